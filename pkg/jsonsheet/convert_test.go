package jsonsheet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

const sampleJSON = `{"parallel":[{"id":1,"source":"go home","target":"x"},{"id":2,"source":"home go","target":"y"}]}`

func mustDocument(t *testing.T, name, text string) *models.Document {
	t.Helper()
	v, err := parser.DecodeJSON(text)
	require.NoError(t, err)
	return &models.Document{Name: name, Size: int64(len(text)), Value: v}
}

func TestConvert_NoTermsSingleSheet(t *testing.T) {
	doc := mustDocument(t, "data.json", sampleJSON)

	var checkpoints []int
	wb, err := Convert(context.Background(), doc, nil, DefaultOptions(), func(p int) {
		checkpoints = append(checkpoints, p)
	})
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Sheet1", wb.Sheets[0].Name)
	assert.Equal(t, "data.json", wb.BookName)
	assert.Equal(t, models.Grid{
		{"id", "source", "target"},
		{"1", "go home", "x"},
		{"2", "home go", "y"},
	}, wb.Sheets[0].Rows)

	assert.IsNonDecreasing(t, checkpoints)
	assert.Equal(t, progressVerified, checkpoints[len(checkpoints)-1])
}

func TestConvert_OneSheetPerTerm(t *testing.T) {
	doc := mustDocument(t, "data.json", sampleJSON)
	terms := parser.ParseSearchTerms("go home, go home now, x")

	wb, err := Convert(context.Background(), doc, terms, DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"go home", "go home now", "x"}, wb.SheetNames())

	both, _ := wb.Grid("go home")
	assert.Len(t, both.DataRows(), 2)

	none, _ := wb.Grid("go home now")
	assert.Equal(t, models.Grid{{}}, none)

	x, _ := wb.Grid("x")
	require.Len(t, x.DataRows(), 1)
	assert.Equal(t, "1", x.DataRows()[0][0])
}

func TestConvert_NestedRecordWithoutRecordKey(t *testing.T) {
	doc := mustDocument(t, "nested.json", `{"a":{"b":1,"c":{"d":2}}}`)

	wb, err := Convert(context.Background(), doc, nil, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.Grid{{"a.b", "a.c.d"}, {"1", "2"}}, wb.Sheets[0].Rows)
}

func TestConvert_RowsMatchKeyUnion(t *testing.T) {
	doc := mustDocument(t, "mixed.json", `{"parallel":[{"id":1},{"source":"s","revision":{"revision1":"r"}},{"id":3,"extra":[1,2]}]}`)

	wb, err := Convert(context.Background(), doc, nil, DefaultOptions(), nil)
	require.NoError(t, err)

	g := wb.Sheets[0].Rows
	assert.Equal(t, []string{"id", "source", "revision.revision1", "extra"}, g.Header())
	for _, row := range g {
		assert.Len(t, row, 4)
	}
	assert.Equal(t, []string{"3", "", "", "[1,2]"}, g[3])
}

func TestConvert_CustomOptions(t *testing.T) {
	doc := mustDocument(t, "custom.json", `{"items":[{"id":1},{"id":2}]}`)

	wb, err := Convert(context.Background(), doc, nil, Options{RecordKey: "items", DefaultSheetName: "All"}, nil)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "All", wb.Sheets[0].Name)
	assert.Len(t, wb.Sheets[0].Rows.DataRows(), 2)
}

func TestConvert_Errors(t *testing.T) {
	_, err := Convert(context.Background(), nil, nil, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrConversion)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Convert(ctx, mustDocument(t, "data.json", sampleJSON), nil, DefaultOptions(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversion)
	assert.ErrorIs(t, err, context.Canceled)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "sheets", convErr.Component)
}

func TestConversionError_Message(t *testing.T) {
	err := NewConversionError("Sheet1", "grid", errors.New("ragged"))
	assert.Equal(t, `Error converting to Excel format in sheet "Sheet1" (grid): ragged`, err.Error())

	err = NewConversionError("", "records", errors.New("no document"))
	assert.Equal(t, "Error converting to Excel format (records): no document", err.Error())
}
