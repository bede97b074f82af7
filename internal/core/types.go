// Package core holds the ledger domain model and money handling policy.
//
// The persisted JSON shape of these types is a compatibility contract:
// field names must stay exactly as tagged, since the same document is
// read and written by every configured persistence backend.
package core

import (
	"strings"
	"time"
)

// Role of a team member.
type Role string

const (
	RolePlayer Role = "Player"
	RoleStaff  Role = "Staff"
)

// CategoryType distinguishes grouping categories from assignable leaves.
type CategoryType string

const (
	// CategoryMacro groups micro categories and carries no amount.
	CategoryMacro CategoryType = "macro"
	// CategoryMicro is a leaf category a fine can reference.
	CategoryMicro CategoryType = "micro"
)

// ActivityType classifies entries of the activity feed.
type ActivityType string

const (
	ActivityFine     ActivityType = "fine"
	ActivityICS      ActivityType = "ics"
	ActivityPayment  ActivityType = "payment"
	ActivityDonation ActivityType = "donation"
	ActivityMember   ActivityType = "member"
	ActivityCategory ActivityType = "category"
)

// ICSCategoryKey is the reserved key of the built-in match-fee category.
// The category behind it can be renamed and re-priced but never deleted.
const ICSCategoryKey = "ics"

// MaxActivities bounds the activity feed; older entries are evicted.
const MaxActivities = 10

// Fine is a monetary penalty assigned to a member under a leaf category.
// Entries keep insertion order: the index inside Member.Fines is the
// stable reference used to toggle payment state.
type Fine struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Paid        bool    `json:"paid"`
	PaymentDate string  `json:"paymentDate,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Donation is a voluntary payment. MemberID empty means the donor is
// external to the team.
type Donation struct {
	ID        string  `json:"id"`
	DonorName string  `json:"donorName"`
	MemberID  string  `json:"memberId"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Note      string  `json:"note,omitempty"`
}

// Member of the team roster. Deactivation is a soft flag: historical
// fines and donations survive a deactivate/reactivate cycle untouched.
type Member struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Surname   string     `json:"surname"`
	Nickname  string     `json:"nickname,omitempty"`
	Role      Role       `json:"role"`
	Active    bool       `json:"active"`
	Fines     []Fine     `json:"fines"`
	Donations []Donation `json:"donations"`
}

// DisplayName prefers the nickname over "Name Surname".
func (m *Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Name + " " + m.Surname
}

// Matches reports whether the member has the given name and surname,
// compared case-insensitively.
func (m *Member) Matches(name, surname string) bool {
	return strings.EqualFold(m.Name, name) && strings.EqualFold(m.Surname, surname)
}

// Category is a keyed entry of the two-level fine taxonomy.
type Category struct {
	Name           string       `json:"name"`
	Amount         float64      `json:"amount,omitempty"`
	Description    string       `json:"description,omitempty"`
	Type           CategoryType `json:"type"`
	ParentCategory string       `json:"parentCategory,omitempty"`
	Active         bool         `json:"active"`
	Deletable      bool         `json:"deletable"`
}

// Assignable reports whether a fine may reference this category under
// the given key. Only micro categories and the reserved ICS leaf carry
// an amount a fine can be priced from.
func (c Category) Assignable(key string) bool {
	return c.Type == CategoryMicro || key == ICSCategoryKey
}

// ICSEvent records a group fee assignment. Members holds display names;
// the monetary state lives in the per-member fine rows with category
// "ics", not here.
type ICSEvent struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	Participants int      `json:"participants"`
	Members      []string `json:"members"`
}

// Activity is one entry of the bounded audit feed.
type Activity struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Type        ActivityType `json:"type"`
	Date        time.Time    `json:"date"`
	Amount      float64      `json:"amount,omitempty"`
}

// Ledger is the aggregate root: the whole treasury state as loaded from
// and flushed to the persistence backend.
type Ledger struct {
	Members         []Member            `json:"members"`
	Categories      map[string]Category `json:"categories"`
	Activities      []Activity          `json:"activities"`
	ICSEvents       []ICSEvent          `json:"icsEvents"`
	GlobalDonations []Donation          `json:"globalDonations"`
}

// NewLedger returns the default empty ledger containing only the
// built-in ICS category.
func NewLedger() *Ledger {
	return &Ledger{
		Members:         []Member{},
		Categories:      map[string]Category{ICSCategoryKey: defaultICSCategory()},
		Activities:      []Activity{},
		ICSEvents:       []ICSEvent{},
		GlobalDonations: []Donation{},
	}
}

func defaultICSCategory() Category {
	return Category{
		Name:        "ICS",
		Amount:      1,
		Description: "€1 per missed match",
		Type:        CategoryMicro,
		Active:      true,
		Deletable:   false,
	}
}

// Normalize patches documents written by older versions: missing active
// flags default to true and the ICS category is re-seeded if absent.
func (l *Ledger) Normalize() {
	if l.Categories == nil {
		l.Categories = map[string]Category{}
	}
	if _, ok := l.Categories[ICSCategoryKey]; !ok {
		l.Categories[ICSCategoryKey] = defaultICSCategory()
	}
	if l.Members == nil {
		l.Members = []Member{}
	}
	if l.Activities == nil {
		l.Activities = []Activity{}
	}
	if l.ICSEvents == nil {
		l.ICSEvents = []ICSEvent{}
	}
	if l.GlobalDonations == nil {
		l.GlobalDonations = []Donation{}
	}
}

// FindMember returns a pointer into the member slice, or nil.
func (l *Ledger) FindMember(id string) *Member {
	for i := range l.Members {
		if l.Members[i].ID == id {
			return &l.Members[i]
		}
	}
	return nil
}

// CategoryName resolves a category key to its display name. Unresolved
// keys degrade to the raw key so historical data never fails to render.
func (l *Ledger) CategoryName(key string) string {
	if c, ok := l.Categories[key]; ok {
		return c.Name
	}
	return key
}

// CloneMembers deep-copies the roster including fines and donations.
func CloneMembers(members []Member) []Member {
	out := make([]Member, len(members))
	for i, m := range members {
		cp := m
		cp.Fines = append([]Fine(nil), m.Fines...)
		cp.Donations = append([]Donation(nil), m.Donations...)
		out[i] = cp
	}
	return out
}

// CloneCategories deep-copies the category map.
func CloneCategories(categories map[string]Category) map[string]Category {
	out := make(map[string]Category, len(categories))
	for k, v := range categories {
		out[k] = v
	}
	return out
}

// CloneActivities copies the activity feed.
func CloneActivities(activities []Activity) []Activity {
	return append([]Activity(nil), activities...)
}

// CloneDonations copies a donation list.
func CloneDonations(donations []Donation) []Donation {
	return append([]Donation(nil), donations...)
}
