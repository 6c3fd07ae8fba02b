package models

import "time"

// GroupStatus represents the lifecycle state of a group.
type GroupStatus string

const (
	GroupStatusRecruiting GroupStatus = "recruiting" // open for members, no draw yet
	GroupStatusDrawn      GroupStatus = "drawn"      // assignments computed
	GroupStatusCompleted  GroupStatus = "completed"  // gifts exchanged; reserved, no operation sets it
)

const (
	// DefaultMaxMembers caps group size unless the admin changes it.
	DefaultMaxMembers = 50
	// MinDrawMembers is the smallest group a draw is allowed on.
	MinDrawMembers = 3
	// DefaultBudget is the suggested gift budget for new groups.
	DefaultBudget = "10.000 AOA"
)

// GroupNames is the themed pool used when no custom name is given. A random
// numeric suffix is appended to reduce display collisions.
var GroupNames = []string{
	"Rainha Ginga",
	"Imbondeira",
	"Kundi Paihama",
	"Palanca Negra",
	"Pensador",
	"Mussulo Vibes",
	"Welwitschia",
	"Quedas de Kalandula",
	"Serra da Leba",
	"Semba no Pé",
}

// Group is a Secret Santa group. Members and PendingMembers are disjoint at
// every observable state; AdminID is always an element of Members. DrawResult
// is present exactly when Status is drawn and maps each giver to a distinct
// recipient with no self-assignment.
type Group struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	CustomSlug       string      `json:"custom_slug,omitempty"`
	Description      string      `json:"description,omitempty"`
	GroupImage       string      `json:"group_image,omitempty"`
	AdminID          string      `json:"admin_id"`
	IsPublic         bool        `json:"is_public"`
	RequiresApproval bool        `json:"requires_approval"`
	MaxMembers       int         `json:"max_members"`
	Budget           string      `json:"budget,omitempty"`
	Status           GroupStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	Members        []string          `json:"members"`         // join order
	PendingMembers []string          `json:"pending_members"` // request order
	DrawResult     map[string]string `json:"draw_result,omitempty"`
}

// GroupCreate is the payload for explicit group creation.
type GroupCreate struct {
	Name       string `json:"name" binding:"omitempty,min=1,max=100"`
	CustomSlug string `json:"custom_slug" binding:"omitempty,max=50"`
	IsPublic   bool   `json:"is_public"`
}

// GroupSettingsUpdate enumerates exactly the fields mutable through the
// settings endpoint. Nil fields are left untouched.
type GroupSettingsUpdate struct {
	Name             *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	CustomSlug       *string `json:"custom_slug,omitempty" binding:"omitempty,max=50"`
	Description      *string `json:"description,omitempty" binding:"omitempty,max=1000"`
	GroupImage       *string `json:"group_image,omitempty"`
	IsPublic         *bool   `json:"is_public,omitempty"`
	RequiresApproval *bool   `json:"requires_approval,omitempty"`
	Budget           *string `json:"budget,omitempty" binding:"omitempty,max=100"`
	MaxMembers       *int    `json:"max_members,omitempty" binding:"omitempty,min=2,max=500"`
}

// JoinResult reports the outcome of a join request.
type JoinResult struct {
	Accepted bool   `json:"accepted"`
	Pending  bool   `json:"pending"`
	Message  string `json:"message"`
}

// AddByEmailStatus is the outcome of an admin adding a member by email.
type AddByEmailStatus string

const (
	AddByEmailAdded   AddByEmailStatus = "added"   // registered user added directly
	AddByEmailInvited AddByEmailStatus = "invited" // unknown email; client falls back to an invite
)

// AddByEmailResult reports the outcome of the add-by-email operation.
type AddByEmailResult struct {
	Status   AddByEmailStatus `json:"status"`
	UserID   string           `json:"user_id,omitempty"`
	UserName string           `json:"user_name,omitempty"`
}
