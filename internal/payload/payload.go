// Package payload decodes snapshots of the remote API into the shapes the
// console works with. Ids may arrive as JSON strings or numbers.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tgienger/agency/internal/models"
)

var validate = validator.New()

// Document is one exported snapshot
type Document struct {
	Workers   []models.Worker   `json:"workers"`
	Tasks     []Task            `json:"tasks"`
	Materials []models.Material `json:"materials"`

	// Skipped lists the entries Decode dropped
	Skipped []Skip `json:"-"`
}

// Task is a denormalized task record tagged with the worker it was listed for
type Task struct {
	models.TaskRecord
	WorkerID models.ID `json:"workerId" validate:"required"`
}

// Skip is one entry left out of a document
type Skip struct {
	Kind   string // worker, task, material, review or keyword
	Index  int    // position in the enclosing list
	ID     models.ID
	Reason string
}

func (s Skip) String() string {
	return fmt.Sprintf("%s[%d] %s: %s", s.Kind, s.Index, s.ID, s.Reason)
}

// Decode reads a document and drops the entries that cannot be stored.
// Only unreadable JSON is an error.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode payload: %w", err)
	}
	return doc.Clean(), nil
}

// DecodeFile opens path and decodes it
func DecodeFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Clean returns a copy without entries that miss a required id, tasks
// listed for an unknown worker, and materials of an unknown task. Reviews
// and keywords without an id are dropped from their material. Dropped
// entries are appended to Skipped.
func (d Document) Clean() Document {
	out := Document{Skipped: slices.Clone(d.Skipped)}
	skip := func(kind string, i int, id models.ID, reason string) {
		out.Skipped = append(out.Skipped, Skip{Kind: kind, Index: i, ID: id, Reason: reason})
	}

	workers := make(map[models.ID]struct{}, len(d.Workers))
	for i, w := range d.Workers {
		if err := validate.Struct(w); err != nil {
			skip("worker", i, w.ID, reason(err))
			continue
		}
		workers[w.ID] = struct{}{}
		out.Workers = append(out.Workers, w)
	}

	tasks := make(map[models.ID]struct{}, len(d.Tasks))
	for i, t := range d.Tasks {
		if err := validate.Struct(t); err != nil {
			skip("task", i, t.ID, reason(err))
			continue
		}
		if _, ok := workers[t.WorkerID]; !ok {
			skip("task", i, t.ID, "unknown worker "+t.WorkerID.String())
			continue
		}
		tasks[t.ID] = struct{}{}
		out.Tasks = append(out.Tasks, t)
	}

	for i, m := range d.Materials {
		var reviews []models.Review
		for j, r := range m.Reviews {
			if err := validate.Struct(r); err != nil {
				skip("review", j, r.ID, reason(err))
				continue
			}
			reviews = append(reviews, r)
		}
		var keywords []models.Keyword
		for j, k := range m.Keywords {
			if err := validate.Struct(k); err != nil {
				skip("keyword", j, k.ID, reason(err))
				continue
			}
			keywords = append(keywords, k)
		}
		m.Reviews, m.Keywords = reviews, keywords

		if err := validate.Struct(m); err != nil {
			skip("material", i, m.ID, reason(err))
			continue
		}
		if _, ok := tasks[m.TaskID]; !ok {
			skip("material", i, m.ID, "unknown task "+m.TaskID.String())
			continue
		}
		out.Materials = append(out.Materials, m)
	}
	return out
}

func reason(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fmt.Sprintf("%s %s", fe.Field(), fe.Tag())
	}
	return strings.Join(fields, ", ")
}

// WorkerTasks returns the records listed for one worker, in document order
func (d Document) WorkerTasks(workerID models.ID) []models.TaskRecord {
	workerID = models.NewID(workerID)
	var out []models.TaskRecord
	for _, t := range d.Tasks {
		if t.WorkerID == workerID {
			out = append(out, t.TaskRecord)
		}
	}
	return out
}
