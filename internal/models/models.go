package models

// Status is a named status as delivered by the remote API ({ "name": ... })
type Status struct {
	Name string `json:"name" db:"name"`
}

// Named is a named reference (project type, client, service type, language)
type Named struct {
	Name string `json:"name"`
}

// Person is a named person without an id (project manager)
type Person struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Project is the root of one filtering tree
type Project struct {
	ID          ID
	Name        string
	StartDate   string
	EndDate     string
	Status      Status
	ProjectType Named
	Client      Named
	Manager     Person
	Services    []Service // unique by ID, in order of first appearance
}

// Service is a unit of work performed under exactly one project
type Service struct {
	ID           ID
	ServiceName  string
	EstimateCost float64
	ServiceType  Named
	Tasks        []Task
}

// Task is a leaf of the filtering tree. Filtering includes or excludes
// tasks but never modifies them.
type Task struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TaskStatus  Status  `json:"taskStatus"`
	Priority    int     `json:"priority"`
	Value       float64 `json:"value"`
	StartDate   string  `json:"startDate"`
	Deadline    string  `json:"deadline"`
	EndDate     string  `json:"endDate"`
}

// Keyword tags a material
type Keyword struct {
	ID   ID     `json:"id" validate:"required"`
	Name string `json:"name"`
}

// Reviewer is the author of a review
type Reviewer struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Review is one reviewer's feedback on one material
type Review struct {
	ID              ID       `json:"id" validate:"required"`
	MaterialID      ID       `json:"materialId"`
	Comments        string   `json:"comments"`
	SuggestedChange string   `json:"suggestedChange"`
	ReviewDate      string   `json:"reviewDate"`
	MaterialSummary string   `json:"materialSummary"`
	Reviewer        Reviewer `json:"reviewer"`
}

// Material is a deliverable attached to a task
type Material struct {
	ID          ID        `json:"id" validate:"required"`
	TaskID      ID        `json:"taskId" validate:"required"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Language    Named     `json:"language"`
	Keywords    []Keyword `json:"keywords" validate:"dive"`
	Reviews     []Review  `json:"reviews" validate:"dive"` // list order is the API order
}

// Worker is an employee tasks are assigned to
type Worker struct {
	ID      ID     `json:"id" validate:"required"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// ReviewInput is the editable part of a review. The reviewer is always the
// caller; the data source fills in the id and date.
type ReviewInput struct {
	MaterialID      ID       `json:"materialId" validate:"required"`
	Comments        string   `json:"comments" validate:"required,max=4000"`
	SuggestedChange string   `json:"suggestedChange" validate:"max=4000"`
	MaterialSummary string   `json:"materialSummary" validate:"max=1000"`
	Reviewer        Reviewer `json:"reviewer"`
}
