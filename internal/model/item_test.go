package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemPatchFromJSON(t *testing.T) {
	var patch ItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"location":"Y","locationDetails":null,"images":["/a.jpg"]}`), &patch))

	require.NotNil(t, patch.Location)
	assert.Equal(t, "Y", *patch.Location)
	assert.Nil(t, patch.Name)

	assert.True(t, patch.LocationDetails.Set)
	assert.False(t, patch.LocationDetails.Valid)

	assert.True(t, patch.Images.Set)
	assert.Equal(t, []string{"/a.jpg"}, patch.Images.Value)

	assert.False(t, patch.Coordinates.Set)
}

func TestItemPatchApplyKeepsUnsetFields(t *testing.T) {
	details := "near gate 3"
	item := Item{
		Name:            "A",
		Location:        "X",
		LocationDetails: &details,
		Images:          []string{"/one.jpg"},
		Coordinates:     &Coordinates{Lat: 1, Lng: 2},
	}

	y := "Y"
	ItemPatch{Location: &y}.Apply(&item)

	assert.Equal(t, "A", item.Name)
	assert.Equal(t, "Y", item.Location)
	require.NotNil(t, item.LocationDetails)
	assert.Equal(t, "near gate 3", *item.LocationDetails)
	assert.Equal(t, []string{"/one.jpg"}, item.Images)
	assert.Equal(t, &Coordinates{Lat: 1, Lng: 2}, item.Coordinates)
}

func TestItemPatchApplyNullClears(t *testing.T) {
	details := "near gate 3"
	item := Item{LocationDetails: &details, Images: []string{"/one.jpg"}}

	ItemPatch{
		LocationDetails: Null[string](),
		Images:          Null[[]string](),
	}.Apply(&item)

	assert.Nil(t, item.LocationDetails)
	assert.Nil(t, item.Images)
}

func TestItemPatchEmpty(t *testing.T) {
	assert.True(t, ItemPatch{}.Empty())

	name := "n"
	assert.False(t, ItemPatch{Name: &name}.Empty())
	assert.False(t, ItemPatch{Coordinates: Null[Coordinates]()}.Empty())
}

func TestItemPatchMarshalOmitsUnset(t *testing.T) {
	loc := "Y"
	data, err := json.Marshal(ItemPatch{Location: &loc, Images: Some([]string{"/a.jpg"})})
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":"Y","images":["/a.jpg"]}`, string(data))
}
