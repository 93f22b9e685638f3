package logtree

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValueText(t *testing.T) {
	assert.Equal(t, "hi", Text("hi").Render())
	assert.Equal(t, "", Text("").Render())
}

func TestValueZeroIsUndefined(t *testing.T) {
	var v Value
	assert.Equal(t, "undefined", v.Render())
}

func TestValueStructured(t *testing.T) {
	assert.Equal(t, "null", Structured(nil).Render())
	assert.Equal(t, "plain", Structured("plain").Render())
	assert.Equal(t, `{"id":7,"name":"x"}`,
		Structured(map[string]any{"name": "x", "id": 7}).Render())
	assert.Equal(t, "[1,2,3]", Structured([]int{1, 2, 3}).Render())
}

func TestValueStructuredMarshalFailure(t *testing.T) {
	// Channels cannot marshal; conversion must produce text, not an error.
	got := Structured(map[string]any{"ch": make(chan int)}).Render()
	assert.Contains(t, got, "marshaling error")
}

func TestValueFailure(t *testing.T) {
	assert.Equal(t, "null", Failure(nil).Render())
	assert.Equal(t, "boom", Failure(fmt.Errorf("boom")).Render())
}

func TestValueFailureWithStack(t *testing.T) {
	err := pkgerrors.New("kaput")
	got := Failure(err).Render()
	assert.Contains(t, got, "kaput")
	// pkg/errors stacks include the frame that created the error.
	assert.Contains(t, got, "value_test.go")
}
