package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/agency/internal/models"
)

func TestDecodeFileNormalizesIDs(t *testing.T) {
	doc, err := DecodeFile("testdata/snapshot.json")
	require.NoError(t, err)

	require.Len(t, doc.Workers, 2)
	assert.Equal(t, models.ID("7"), doc.Workers[0].ID)
	assert.Equal(t, models.ID("8"), doc.Workers[1].ID)

	require.Len(t, doc.Tasks, 3)
	first := doc.Tasks[0]
	assert.Equal(t, models.ID("7"), first.WorkerID)
	assert.Equal(t, models.ID("100"), first.ID)
	assert.Equal(t, 150.5, first.Value)
	pref, sref := first.Refs()
	require.NotNil(t, pref)
	require.NotNil(t, sref)
	assert.Equal(t, models.ID("1"), pref.ID)
	assert.Equal(t, "Mia", pref.Manager.Name)
	assert.Equal(t, models.ID("10"), sref.ID)

	// the same ids delivered as strings compare equal
	pref2, sref2 := doc.Tasks[1].Refs()
	assert.Equal(t, pref.ID, pref2.ID)
	assert.Equal(t, sref.ID, sref2.ID)

	orphan, _ := doc.Tasks[2].Refs()
	assert.Nil(t, orphan)

	require.Len(t, doc.Materials, 1)
	m := doc.Materials[0]
	assert.Equal(t, models.ID("100"), m.TaskID)
	require.Len(t, m.Reviews, 1)
	assert.Equal(t, models.ID("8"), m.Reviews[0].Reviewer.ID)
	assert.Len(t, m.Keywords, 2)
}

func TestWorkerTasks(t *testing.T) {
	doc, err := DecodeFile("testdata/snapshot.json")
	require.NoError(t, err)

	tasks := doc.WorkerTasks(models.NewID(7))
	require.Len(t, tasks, 2)
	assert.Equal(t, models.ID("100"), tasks[0].ID)
	assert.Equal(t, models.ID("101"), tasks[1].ID)

	assert.Empty(t, doc.WorkerTasks("99"))
}

func TestDecodeRejectsUnreadableJSON(t *testing.T) {
	cases := map[string]string{
		"malformed json": `{"workers": [`,
		"object id":      `{"workers": [{"id": {"x": 1}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeKeepsTaskWithBlankName(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"workers": [{"id": 1}], "tasks": [
		{"workerId": 1, "id": 100, "name": "Logo"},
		{"workerId": 1, "id": 101, "name": ""}]}`))
	require.NoError(t, err)

	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, models.ID("100"), doc.Tasks[0].ID)
	assert.Equal(t, models.ID("101"), doc.Tasks[1].ID)
	assert.Empty(t, doc.Skipped)
}

func TestDecodeSkipsBrokenEntries(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind string
	}{
		{"missing worker id", `{"workers": [{"id": 1}, {"name": "x"}]}`, "worker"},
		{"missing task id", `{"workers": [{"id": 1}], "tasks": [{"workerId": 1, "name": "x"}]}`, "task"},
		{"unknown worker", `{"workers": [{"id": 1}], "tasks": [{"workerId": 2, "id": 5, "name": "x"}]}`, "task"},
		{"task without worker", `{"workers": [{"id": 1}], "tasks": [{"id": 5, "name": "x"}]}`, "task"},
		{"unknown task", `{"workers": [{"id": 1}], "materials": [{"id": 3, "taskId": 9, "name": "m"}]}`, "material"},
		{"material without id", `{"workers": [{"id": 1}], "tasks": [{"workerId": 1, "id": 5}],
			"materials": [{"taskId": 5, "name": "m"}]}`, "material"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc, err := Decode(strings.NewReader(c.body))
			require.NoError(t, err)
			require.Len(t, doc.Skipped, 1)
			assert.Equal(t, c.kind, doc.Skipped[0].Kind)
		})
	}
}

func TestDecodeKeepsValidNeighbours(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{
		"workers": [{"id": 1}],
		"tasks": [
			{"workerId": 1, "id": 100, "name": "Logo"},
			{"workerId": 2, "id": 101, "name": "Banner"},
			{"workerId": 1, "name": "no id"}
		],
		"materials": [
			{"id": 3, "taskId": 100, "name": "logo.svg",
			 "keywords": [{"id": 1, "name": "brand"}, {"name": "loose"}],
			 "reviews": [{"comments": "no id"}, {"id": 9, "comments": "ok", "reviewer": {"id": 1}}]},
			{"id": 4, "taskId": 101, "name": "banner.png"}
		]}`))
	require.NoError(t, err)

	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, models.ID("100"), doc.Tasks[0].ID)

	require.Len(t, doc.Materials, 1)
	m := doc.Materials[0]
	assert.Equal(t, models.ID("3"), m.ID)
	require.Len(t, m.Reviews, 1)
	assert.Equal(t, models.ID("9"), m.Reviews[0].ID)
	require.Len(t, m.Keywords, 1)
	assert.Equal(t, "brand", m.Keywords[0].Name)

	kinds := make([]string, len(doc.Skipped))
	for i, s := range doc.Skipped {
		kinds[i] = s.Kind
	}
	assert.ElementsMatch(t, []string{"task", "task", "review", "keyword", "material"}, kinds)
	assert.Contains(t, doc.Skipped[0].String(), "unknown worker 2")
}

func TestDecodeEmptyDocument(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)
}
