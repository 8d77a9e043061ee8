// pkg/registry/schema.go
package registry

// ActivityRegistry lists the Zeebe task types the worker manager serves and
// the BPMN error codes each one can throw.
type ActivityRegistry struct {
	Version    string     `json:"version"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	TaskType    string   `json:"taskType"`
	Description string   `json:"description"`
	ErrorCodes  []string `json:"errorCodes"`
}

