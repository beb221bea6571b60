package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/xls2vcard/internal/core"
)

func reportLines(t *testing.T, contacts []core.Contact) []core.ReportLine {
	t.Helper()
	lines, err := core.BuildReport("", contacts)
	require.NoError(t, err)
	return lines
}

func TestRender(t *testing.T) {
	lines := reportLines(t, []core.Contact{
		{
			LabeledName: "Ana Gómez",
			Email:       "ana@x.com",
			Phones:      []core.Phone{{Label: "CELL", Number: "555"}},
			Group:       "Sales",
		},
		{LabeledName: "王小明"},
	})

	var buf bytes.Buffer
	require.NoError(t, New("").Render(&buf, lines))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "missing PDF header")
	assert.Contains(t, string(out[len(out)-16:]), "%%EOF")
}

func TestRender_ManyContactsPaginate(t *testing.T) {
	contacts := make([]core.Contact, 120)
	for i := range contacts {
		contacts[i] = core.Contact{LabeledName: "Contact", Email: "c@x.com"}
	}

	var buf bytes.Buffer
	require.NoError(t, New("A4").Render(&buf, reportLines(t, contacts)))

	// Each page object carries "/Type /Page" once; more than one means a break happened.
	pages := bytes.Count(buf.Bytes(), []byte("/Type /Page\n"))
	assert.Greater(t, pages, 1)
}

func TestRender_PageSizes(t *testing.T) {
	lines := reportLines(t, []core.Contact{{LabeledName: "x"}})
	for _, size := range []string{"A3", "A5", "Letter", "LEGAL"} {
		t.Run(size, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, New(size).Render(&buf, lines))
			assert.NotZero(t, buf.Len())
		})
	}
}

func TestRender_UnknownPageSize(t *testing.T) {
	var buf bytes.Buffer
	err := New("B9").Render(&buf, reportLines(t, []core.Contact{{LabeledName: "x"}}))
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestRender_UnknownLineKind(t *testing.T) {
	var buf bytes.Buffer
	err := New("").Render(&buf, []core.ReportLine{{Kind: core.LineKind(99)}})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
