package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshalMixedTypes(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
		D ID `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 7, "b": "7", "c": null, "d": " 12 "}`), &got)
	require.NoError(t, err)

	assert.Equal(t, ID("7"), got.A)
	assert.Equal(t, got.A, got.B)
	assert.True(t, got.C.IsZero())
	assert.Equal(t, ID("12"), got.D)
}

func TestIDUnmarshalWholeNumberForms(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
		D ID `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 7.0, "b": 1e3, "c": 7.5, "d": -4.00}`), &got)
	require.NoError(t, err)

	assert.Equal(t, ID("7"), got.A)
	assert.Equal(t, NewID("7"), got.A)
	assert.Equal(t, ID("1000"), got.B)
	assert.Equal(t, ID("7.5"), got.C)
	assert.Equal(t, ID("-4"), got.D)
	assert.Equal(t, ID("7"), NewID(json.Number("7.0")))
}

func TestIDUnmarshalRejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &id))
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestNewID(t *testing.T) {
	assert.Equal(t, ID("7"), NewID(7))
	assert.Equal(t, ID("7"), NewID(int64(7)))
	assert.Equal(t, ID("7"), NewID(float64(7)))
	assert.Equal(t, ID("7"), NewID(" 7 "))
	assert.Equal(t, ID("abc"), NewID(ID("abc")))
	assert.Equal(t, ID(""), NewID(nil))
}

func TestTaskRecordRefs(t *testing.T) {
	var r TaskRecord
	p, s := r.Refs()
	assert.Nil(t, p)
	assert.Nil(t, s)

	r.ServiceInProgress = &ServiceInProgress{ProjectService: &ProjectService{
		Project: &ProjectRef{ID: "1", Name: "Alpha"},
	}}
	p, s = r.Refs()
	require.NotNil(t, p)
	assert.Equal(t, "Alpha", p.Name)
	assert.Nil(t, s)
}
