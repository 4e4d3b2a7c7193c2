package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarHoistsToFunctionScope(t *testing.T) {
	module := NewScope(KindModule, nil)
	fn := NewScope(KindFunction, module)
	block := NewScope(KindBlock, fn)

	block.Declare("x", true)

	assert.False(t, block.Names["x"])
	assert.True(t, fn.Names["x"])
}

func TestLetBindsToItsOwnBlock(t *testing.T) {
	module := NewScope(KindModule, nil)
	block := NewScope(KindBlock, module)

	block.Declare("y", false)

	assert.True(t, block.Names["y"])
	assert.False(t, module.Names["y"])
}

func TestShadowsLocalIgnoresModuleAndOuterScopes(t *testing.T) {
	module := NewScope(KindModule, nil)
	module.Declare("Foo", false)
	fn := NewScope(KindFunction, module)

	assert.False(t, fn.ShadowsLocal("Foo"), "module-level bindings are not shadowing")

	fn.Declare("Bar", false)
	assert.True(t, fn.ShadowsLocal("Bar"))

	nested := NewScope(KindBlock, fn)
	assert.True(t, nested.ShadowsLocal("Bar"), "shadow check walks up through nested blocks")
	assert.False(t, nested.ShadowsLocal("Quux"))
}
