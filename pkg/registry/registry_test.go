package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasforge/oasforge/pkg/registry"
)

func TestInsertAndLookup(t *testing.T) {
	r := registry.New()

	r.InsertFragment("CommonError", []string{"code"}, "description: Error {{code}}")
	r.InsertBlueprint("Page", []string{"T"}, "data: $ref: $T")
	r.InsertSchema("User", "type: object")
	r.InsertConcreteSchema("Page_User", "data: $ref: $User")

	frag, ok := r.Fragment("CommonError")
	require.True(t, ok)
	assert.Equal(t, []string{"code"}, frag.Params)
	assert.Equal(t, "description: Error {{code}}", frag.Body)

	bp, ok := r.Blueprint("Page")
	require.True(t, ok)
	assert.Equal(t, []string{"T"}, bp.Params)

	body, ok := r.Schema("User")
	require.True(t, ok)
	assert.Equal(t, "type: object", body)

	body, ok = r.ConcreteSchema("Page_User")
	require.True(t, ok)
	assert.Equal(t, "data: $ref: $User", body)
}

func TestLookupMissing(t *testing.T) {
	r := registry.New()

	_, ok := r.Fragment("Missing")
	assert.False(t, ok)
	_, ok = r.Blueprint("Missing")
	assert.False(t, ok)
	_, ok = r.Schema("Missing")
	assert.False(t, ok)
	assert.False(t, r.HasFragment("Missing"))
	assert.False(t, r.HasConcreteSchema("Missing"))
}

func TestOverwriteSemantics(t *testing.T) {
	r := registry.New()

	r.InsertSchema("User", "type: object")
	r.InsertSchema("User", "type: string")

	body, ok := r.Schema("User")
	require.True(t, ok)
	assert.Equal(t, "type: string", body, "last write wins")
	assert.Len(t, r.SchemaNames(), 1)
}

func TestNamespacesAreIndependent(t *testing.T) {
	r := registry.New()

	// The same name may exist as a schema, a blueprint, and a fragment.
	r.InsertSchema("Thing", "type: object")
	r.InsertBlueprint("Thing", []string{"T"}, "item: $T")
	r.InsertFragment("Thing", nil, "x: y")

	_, ok := r.Schema("Thing")
	assert.True(t, ok)
	_, ok = r.Blueprint("Thing")
	assert.True(t, ok)
	assert.True(t, r.HasFragment("Thing"))
}

func TestNameListing(t *testing.T) {
	r := registry.New()
	r.InsertSchema("User", "type: object")
	r.InsertSchema("Order", "type: object")
	r.InsertConcreteSchema("Page_User", "data: $ref: $User")

	assert.ElementsMatch(t, []string{"User", "Order"}, r.SchemaNames())
	assert.ElementsMatch(t, []string{"Page_User"}, r.ConcreteSchemaNames())
}
