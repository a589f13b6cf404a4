package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ViewAction enumerates the modal/view state the front-end encodes in the
// query string (?action=create|update|view&id=...).
type ViewAction string

const (
	ViewActionNone   ViewAction = ""
	ViewActionCreate ViewAction = "create"
	ViewActionUpdate ViewAction = "update"
	ViewActionView   ViewAction = "view"
)

// ViewState is the parsed form of the query-string view state.
type ViewState struct {
	Action ViewAction `json:"action"`
	ID     string     `json:"id,omitempty"`
}

// Valid reports whether the action is one of the known values.
func (v ViewState) Valid() bool {
	switch v.Action {
	case ViewActionNone, ViewActionCreate, ViewActionUpdate, ViewActionView:
		return true
	}
	return false
}

// RequiresID reports whether the action only makes sense with a target id.
func (v ViewState) RequiresID() bool {
	return v.Action == ViewActionUpdate || v.Action == ViewActionView
}
