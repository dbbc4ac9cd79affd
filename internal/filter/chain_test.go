package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/agency/internal/models"
)

func task(id, name, status string) models.Task {
	return models.Task{ID: models.ID(id), Name: name, TaskStatus: models.Status{Name: status}}
}

func service(id, name string, tasks ...models.Task) models.Service {
	return models.Service{ID: models.ID(id), ServiceName: name, Tasks: tasks}
}

func project(id, name string, services ...models.Service) models.Project {
	return models.Project{ID: models.ID(id), Name: name, Services: services}
}

// fixture is the Alpha/Beta tree used throughout
func fixture() []models.Project {
	return []models.Project{
		project("1", "Alpha",
			service("10", "Design", task("100", "Logo", "Active")),
			service("11", "Copy", task("101", "Slogan", "Completed")),
		),
		project("2", "Beta",
			service("20", "Design", task("102", "Banner", "Completed")),
		),
	}
}

func ids(projects []models.Project) []string {
	var out []string
	for _, p := range projects {
		out = append(out, "p"+p.ID.String())
		for _, s := range p.Services {
			out = append(out, "s"+s.ID.String())
			for _, t := range s.Tasks {
				out = append(out, "t"+t.ID.String())
			}
		}
	}
	return out
}

func TestScenarioEmptyQueryActiveMode(t *testing.T) {
	got := New().Apply(Query{Mode: ModeActive}, fixture())
	assert.Equal(t, []string{"p1", "s10", "t100"}, ids(got))
}

func TestEmptyQueryActiveModeDropsFullyTerminalProjects(t *testing.T) {
	in := []models.Project{
		project("A", "A", service("a", "S", task("1", "t", "Completed"))),
		project("B", "B", service("b", "S", task("2", "t", "InProgress"))),
	}
	got := New().Apply(Query{Text: "", Mode: ModeActive}, in)
	require.Len(t, got, 1)
	assert.Equal(t, models.ID("B"), got[0].ID)
}

func TestEmptyQueryAllModeIsIdentity(t *testing.T) {
	in := fixture()
	in = append(in, project("3", "Gamma"))

	got := New().Apply(Query{Mode: ModeAll}, in)
	assert.Equal(t, in, got)
}

func TestProjectNameIsCaseInsensitiveSubstring(t *testing.T) {
	in := []models.Project{project("1", "MyProject", service("s", "Design", task("t", "x", "Active")))}

	for _, mode := range []Mode{ModeActive, ModeAll} {
		got := New().Apply(Query{Text: "proj", Mode: mode}, in)
		assert.Equal(t, []string{"p1", "ss", "tt"}, ids(got), "mode %s", mode)
	}
}

func TestQueryTextIgnoresSurroundingSpace(t *testing.T) {
	e := New()
	for _, mode := range []Mode{ModeActive, ModeAll} {
		padded := e.Apply(Query{Text: "  alp ", Mode: mode}, fixture())
		plain := e.Apply(Query{Text: "alp", Mode: mode}, fixture())
		assert.Equal(t, ids(plain), ids(padded), "mode %s", mode)
		assert.Equal(t, "p1", ids(padded)[0])

		blank := e.Apply(Query{Text: "   ", Mode: mode}, fixture())
		assert.Equal(t, ids(e.Apply(Query{Mode: mode}, fixture())), ids(blank), "mode %s", mode)
	}
}

func TestAllModeServiceMatchKeepsAllTasks(t *testing.T) {
	got := New().Apply(Query{Text: "desi", Mode: ModeAll}, fixture())
	assert.Equal(t, []string{"p1", "s10", "t100", "p2", "s20", "t102"}, ids(got))
}

func TestAllModeProjectMatchKeepsWholeProject(t *testing.T) {
	got := New().Apply(Query{Text: "alp", Mode: ModeAll}, fixture())
	assert.Equal(t, []string{"p1", "s10", "t100", "s11", "t101"}, ids(got))
}

func TestAllModeChildMatchWinsOverProjectMatch(t *testing.T) {
	in := []models.Project{project("1", "Copy Co",
		service("10", "Design", task("100", "a", "Active")),
		service("11", "Copywriting", task("101", "b", "Active")),
	)}
	got := New().Apply(Query{Text: "copy", Mode: ModeAll}, in)
	assert.Equal(t, []string{"p1", "s11", "t101"}, ids(got))
}

func TestAllModeNoMatch(t *testing.T) {
	assert.Empty(t, New().Apply(Query{Text: "zzz", Mode: ModeAll}, fixture()))
}

func TestActiveModeTaskNameMatch(t *testing.T) {
	in := []models.Project{project("1", "Alpha",
		service("10", "Design",
			task("100", "Logo", "Active"),
			task("103", "Icons", "Active"),
			task("104", "Logo v2", "Completed"),
		),
	)}
	got := New().Apply(Query{Text: "LOGO", Mode: ModeActive}, in)
	assert.Equal(t, []string{"p1", "s10", "t100"}, ids(got))
}

func TestActiveModeServiceMatchKeepsOnlyActiveTasks(t *testing.T) {
	in := []models.Project{project("1", "Alpha",
		service("10", "Design",
			task("100", "Logo", "Active"),
			task("104", "Old logo", "Accepted"),
		),
	)}
	got := New().Apply(Query{Text: "design", Mode: ModeActive}, in)
	assert.Equal(t, []string{"p1", "s10", "t100"}, ids(got))
}

func TestActiveModeProjectMatchShowsActiveSubtree(t *testing.T) {
	got := New().Apply(Query{Text: "alpha", Mode: ModeActive}, fixture())
	assert.Equal(t, []string{"p1", "s10", "t100"}, ids(got))
}

func TestActiveModeProjectMatchWithoutActiveTasksIsPruned(t *testing.T) {
	assert.Empty(t, New().Apply(Query{Text: "beta", Mode: ModeActive}, fixture()))
}

func TestTerminalStatusesIgnoreCase(t *testing.T) {
	in := []models.Project{project("1", "A", service("s", "S",
		task("1", "a", "completed"),
		task("2", "b", " CANCELLED "),
		task("3", "c", "accepted"),
	))}
	assert.Empty(t, New().Apply(Query{Mode: ModeActive}, in))
}

func TestCustomTerminalSet(t *testing.T) {
	in := []models.Project{project("1", "A", service("s", "S", task("1", "a", "Archived")))}

	assert.Len(t, New().Apply(Query{Mode: ModeActive}, in), 1)
	assert.Empty(t, New("Archived").Apply(Query{Mode: ModeActive}, in))
}

func TestMalformedInputIsNoMatch(t *testing.T) {
	in := []models.Project{
		{ID: "1", Name: "No services"},
		project("2", "Nil tasks", models.Service{ID: "20", ServiceName: "Design"}),
		project("3", "Unknown status", service("30", "Design", models.Task{ID: "300", Name: "x"})),
	}
	assert.Empty(t, New().Apply(Query{Mode: ModeActive}, in))
	assert.Empty(t, New().Apply(Query{Text: "design", Mode: ModeActive}, in))
	assert.Len(t, New().Apply(Query{Mode: ModeAll}, in), 3)
}

func TestFilteringDoesNotMutateInput(t *testing.T) {
	in := fixture()
	before := fixture()

	got := New().Apply(Query{Text: "design", Mode: ModeActive}, in)
	require.NotEmpty(t, got)
	got[0].Services[0].Tasks[0].Name = "changed"
	got[0].Services[0].ServiceName = "changed"

	assert.Equal(t, before, in)
}

func TestOutputIsSubsetWithAncestors(t *testing.T) {
	in := fixture()
	inTasks := map[models.ID]models.Task{}
	inServices := map[models.ID]models.ID{}
	for _, p := range in {
		for _, s := range p.Services {
			inServices[s.ID] = p.ID
			for _, tk := range s.Tasks {
				inTasks[tk.ID] = tk
			}
		}
	}

	e := New()
	for _, q := range []Query{
		{Mode: ModeActive}, {Mode: ModeAll},
		{Text: "a", Mode: ModeActive}, {Text: "a", Mode: ModeAll},
		{Text: "design", Mode: ModeActive}, {Text: "logo", Mode: ModeAll},
	} {
		for _, p := range e.Apply(q, in) {
			for _, s := range p.Services {
				assert.Equal(t, inServices[s.ID], p.ID, "service %s under wrong project", s.ID)
				for _, tk := range s.Tasks {
					assert.Equal(t, inTasks[tk.ID], tk, "task %s changed", tk.ID)
				}
			}
		}
	}
}

func TestComposeRunsInnerStagesFirst(t *testing.T) {
	var order []string
	stage := func(name string) Stage {
		return func(q Query, p models.Project, next Handler) (models.Project, bool) {
			out, ok := next(q, p)
			order = append(order, name)
			return out, ok
		}
	}

	h := Compose(stage("outer"), stage("middle"), stage("inner"))
	_, ok := h(Query{}, project("1", "A"))
	assert.True(t, ok)
	assert.Equal(t, []string{"inner", "middle", "outer"}, order)
}

func TestComposeWithoutStagesPassesThrough(t *testing.T) {
	p := project("1", "A")
	out, ok := Compose()(Query{}, p)
	assert.True(t, ok)
	assert.Equal(t, p, out)
}

func TestParseModeAndToggle(t *testing.T) {
	assert.Equal(t, ModeAll, ParseMode(" ALL "))
	assert.Equal(t, ModeActive, ParseMode("active"))
	assert.Equal(t, ModeActive, ParseMode("bogus"))
	assert.Equal(t, ModeAll, ModeActive.Toggle())
	assert.Equal(t, ModeActive, ModeAll.Toggle())
}

func TestChainShapes(t *testing.T) {
	e := New()
	assert.Len(t, e.Chain(ModeActive), 3)
	assert.Len(t, e.Chain(ModeAll), 2)
}
