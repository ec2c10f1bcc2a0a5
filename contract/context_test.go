package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextIsImmutable(t *testing.T) {
	root := NewContext().WithMethod("POST").WithPath("/pets").WithEntityType(EntityBody)
	child := root.WithPointerSegment("owner").WithPointerSegment("name")

	assert.Equal(t, "", root.Pointer())
	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, "/owner/name", child.Pointer())
	assert.Equal(t, 2, child.Depth())

	resp := child.WithDirection(DirectionResponse)
	assert.Equal(t, DirectionRequest, child.Direction())
	assert.Equal(t, 400, child.StatusCode())
	assert.Equal(t, 500, resp.StatusCode())
}

func TestContextKey(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want string
	}{
		{"body root", NewContext().WithEntityType(EntityBody), "REQUEST/BODY"},
		{"body pointer", NewContext().WithEntityType(EntityBody).WithPointerSegment("items").WithIndex(0), "REQUEST/BODY#/items/0"},
		{"escaped pointer", NewContext().WithEntityType(EntityBody).WithPointerSegment("a/b~c"), "REQUEST/BODY#/a~1b~0c"},
		{"query parameter", NewContext().WithEntityType(EntityQueryParameter).WithEntity("limit"), "REQUEST/QUERY_PARAMETER/limit"},
		{"query parameter item", NewContext().WithEntityType(EntityQueryParameter).WithEntity("ids").WithIndex(1), "REQUEST/QUERY_PARAMETER/ids"},
		{"header parameter", NewContext().WithDirection(DirectionResponse).WithEntityType(EntityHeaderParameter).WithEntity("X-Rate-Limit"), "RESPONSE/HEADER_PARAMETER/X-Rate-Limit"},
		{"media type", NewContext().WithEntityType(EntityMediaType).WithEntity("text/plain"), "REQUEST/HEADER/Content-Type"},
		{"no entity", NewContext(), "REQUEST/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.Key())
		})
	}
}

func TestRefTrail(t *testing.T) {
	ctx := NewContext()

	a, fresh := ctx.withRef("A")
	assert.True(t, fresh)
	assert.Equal(t, "A", a.ComplexType())

	b, fresh := a.withRef("B")
	assert.True(t, fresh)
	assert.Equal(t, []string{"A", "B"}, b.refs.names())

	_, fresh = b.withRef("A")
	assert.False(t, fresh)

	// descending into the instance starts a new trail
	_, fresh = b.WithPointerSegment("child").withRef("A")
	assert.True(t, fresh)

	// the parent trail is unchanged
	assert.Equal(t, []string{"A"}, a.refs.names())
}

func TestWithDiscriminated(t *testing.T) {
	ctx, _ := NewContext().withRef("Pet")

	cat, fresh := ctx.withDiscriminated("Cat")
	assert.True(t, fresh)
	assert.Equal(t, "Cat", cat.ComplexType())

	_, fresh = cat.withDiscriminated("Cat")
	assert.False(t, fresh)

	_, fresh = ctx.withDiscriminated("Pet")
	assert.False(t, fresh)
}

func TestEntityType(t *testing.T) {
	assert.Equal(t, "QUERY_PARAMETER", EntityQueryParameter.String())
	assert.Equal(t, "query parameter", EntityQueryParameter.Label())
	assert.True(t, EntityHeaderParameter.IsParameter())
	assert.False(t, EntityBody.IsParameter())
	assert.Equal(t, "UNKNOWN", EntityType(99).String())
}

func TestDirection(t *testing.T) {
	tests := []struct {
		dir    Direction
		name   string
		status int
	}{
		{DirectionRequest, "REQUEST", 400},
		{DirectionResponse, "RESPONSE", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.dir.String())
			assert.Equal(t, tt.status, tt.dir.StatusCode())
			assert.Equal(t, tt.dir, NewContext().WithDirection(tt.dir).Direction())
		})
	}

	// the message types live alongside the direction constants
	req := &Request{Method: "GET", Path: "/pets"}
	resp := &Response{StatusCode: 200}
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, 200, resp.StatusCode)
}
