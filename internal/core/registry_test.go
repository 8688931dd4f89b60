package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	def := Describe("amount")
	assert.Equal(t, "Amount", def.Label)
	assert.Equal(t, KindNumber, def.Kind)

	def = Describe("category")
	assert.Equal(t, KindSelect, def.Kind)
	assert.Equal(t, Categories, def.Options)

	unknown := Describe("mood")
	assert.Equal(t, FieldDefinition{Key: "mood", Label: "mood", Prompt: "mood", Kind: KindText}, unknown)
}

func TestDescribeDoesNotLeakOptions(t *testing.T) {
	def := Describe("category")
	def.Options[0] = "Changed"
	assert.Equal(t, "Food", Describe("category").Options[0])
}

func TestFieldsCatalog(t *testing.T) {
	fields := Fields()
	assert.Len(t, fields, 9)
	assert.Equal(t, FieldDate, fields[0].Key)
	assert.True(t, fields[0].Required)
	assert.Equal(t, FieldNote, fields[len(fields)-1].Key)
}

func TestIsNumericAndLabels(t *testing.T) {
	assert.True(t, IsNumeric("amount"))
	assert.True(t, IsNumeric("count"))
	assert.False(t, IsNumeric("category"))
	assert.False(t, IsNumeric("unknown"))
	assert.Equal(t, []string{"Date", "Count", "Category", "x"}, Labels([]string{"date", "count", "category", "x"}))
}
