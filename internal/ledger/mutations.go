package ledger

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
)

func newID() string {
	return uuid.NewString()
}

// CategoryKey derives the map key for a category name: lowercased, with
// spaces collapsed to underscores.
func CategoryKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// AddMember adds a member to the roster. Name and surname are required
// and the pair must be unique, compared case-insensitively.
func (s *Store) AddMember(name, surname, nickname string, role core.Role) (*core.Member, error) {
	name = strings.TrimSpace(name)
	surname = strings.TrimSpace(surname)
	if name == "" || surname == "" {
		return nil, core.ErrMissingField
	}
	if role != core.RolePlayer && role != core.RoleStaff {
		role = core.RolePlayer
	}
	for i := range s.ledger.Members {
		if s.ledger.Members[i].Matches(name, surname) {
			return nil, core.ErrDuplicateMember
		}
	}
	m := core.Member{
		ID:        newID(),
		Name:      name,
		Surname:   surname,
		Nickname:  strings.TrimSpace(nickname),
		Role:      role,
		Active:    true,
		Fines:     []core.Fine{},
		Donations: []core.Donation{},
	}
	s.ledger.Members = append(s.ledger.Members, m)
	added := &s.ledger.Members[len(s.ledger.Members)-1]
	s.record(fmt.Sprintf("New member: %s", added.DisplayName()), core.ActivityMember, 0)
	s.logger.Info("Member added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldMemberID, added.ID,
		applog.FieldMemberName, added.DisplayName())
	return added, nil
}

// DeactivateMember soft-removes a member. Fines and donations stay in
// place so historical totals are unaffected.
func (s *Store) DeactivateMember(id string) error {
	m := s.ledger.FindMember(id)
	if m == nil {
		return core.ErrMemberNotFound
	}
	m.Active = false
	s.record(fmt.Sprintf("Member deactivated: %s", m.DisplayName()), core.ActivityMember, 0)
	return nil
}

// ReactivateMember reverses a deactivation.
func (s *Store) ReactivateMember(id string) error {
	m := s.ledger.FindMember(id)
	if m == nil {
		return core.ErrMemberNotFound
	}
	m.Active = true
	s.record(fmt.Sprintf("Member reactivated: %s", m.DisplayName()), core.ActivityMember, 0)
	return nil
}

// AssignFine records a fine against a member. The amount is always the
// category's configured amount at assignment time; later category
// re-pricing does not touch existing rows. An empty date defaults to
// today.
func (s *Store) AssignFine(memberID, categoryKey, date, description string) (*core.Fine, error) {
	m := s.ledger.FindMember(memberID)
	if m == nil {
		return nil, core.ErrMemberNotFound
	}
	cat, ok := s.ledger.Categories[categoryKey]
	if !ok {
		return nil, core.ErrCategoryNotFound
	}
	if !cat.Active || !cat.Assignable(categoryKey) {
		return nil, core.ErrCategoryNotAssignable
	}
	if date == "" {
		date = s.today()
	}
	f := core.Fine{
		Category:    categoryKey,
		Amount:      cat.Amount,
		Date:        date,
		Description: strings.TrimSpace(description),
	}
	m.Fines = append(m.Fines, f)
	added := &m.Fines[len(m.Fines)-1]
	s.record(fmt.Sprintf("%s: %s (%s)", m.DisplayName(), cat.Name, core.FormatEuro(f.Amount)),
		core.ActivityFine, f.Amount)
	s.logger.Info("Fine assigned",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldMemberID, m.ID,
		applog.FieldCategory, categoryKey,
		applog.FieldAmount, f.Amount)
	return added, nil
}

// AssignFines records the same fine against several members in one
// step. Every member must exist; nothing is written when any id is
// unknown.
func (s *Store) AssignFines(categoryKey string, memberIDs []string, date, description string) ([]core.Fine, error) {
	if len(memberIDs) == 0 {
		return nil, core.ErrMissingField
	}
	for _, id := range memberIDs {
		if s.ledger.FindMember(id) == nil {
			return nil, core.ErrMemberNotFound
		}
	}
	fines := make([]core.Fine, 0, len(memberIDs))
	for _, id := range memberIDs {
		f, err := s.AssignFine(id, categoryKey, date, description)
		if err != nil {
			return nil, err
		}
		fines = append(fines, *f)
	}
	return fines, nil
}

// AssignICS records a match fee for a group of members: one event entry
// plus one ICS fine per member at the current ICS amount. Unknown
// member ids are skipped. An empty date defaults to today.
func (s *Store) AssignICS(date string, memberIDs []string) (*core.ICSEvent, error) {
	cat, ok := s.ledger.Categories[core.ICSCategoryKey]
	if !ok {
		return nil, core.ErrCategoryNotFound
	}
	if len(memberIDs) == 0 {
		return nil, core.ErrMissingField
	}
	if date == "" {
		date = s.today()
	}
	// The event row carries display names, not ids: it is a readable
	// record of who sat out the match.
	names := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		m := s.ledger.FindMember(id)
		if m == nil {
			continue
		}
		m.Fines = append(m.Fines, core.Fine{
			Category: core.ICSCategoryKey,
			Amount:   cat.Amount,
			Date:     date,
		})
		names = append(names, m.DisplayName())
	}
	if len(names) == 0 {
		return nil, core.ErrMemberNotFound
	}
	event := core.ICSEvent{
		ID:           newID(),
		Date:         date,
		Participants: len(names),
		Members:      names,
	}
	s.ledger.ICSEvents = append(s.ledger.ICSEvents, event)
	total := cat.Amount * float64(len(names))
	s.record(fmt.Sprintf("ICS assigned to %d members (%s)", len(names), core.FormatEuro(total)),
		core.ActivityICS, core.Round2(total))
	return &s.ledger.ICSEvents[len(s.ledger.ICSEvents)-1], nil
}

// ToggleFinePayment flips the paid flag of the fine at the given index
// in the member's list. Marking paid stamps today as the payment date;
// reverting clears it.
func (s *Store) ToggleFinePayment(memberID string, index int) (*core.Fine, error) {
	m := s.ledger.FindMember(memberID)
	if m == nil {
		return nil, core.ErrMemberNotFound
	}
	if index < 0 || index >= len(m.Fines) {
		return nil, core.ErrFineNotFound
	}
	f := &m.Fines[index]
	f.Paid = !f.Paid
	catName := s.ledger.CategoryName(f.Category)
	if f.Paid {
		f.PaymentDate = s.today()
		s.record(fmt.Sprintf("%s paid: %s (%s)", m.DisplayName(), catName, core.FormatEuro(f.Amount)),
			core.ActivityPayment, f.Amount)
	} else {
		f.PaymentDate = ""
		s.record(fmt.Sprintf("%s payment reverted: %s (%s)", m.DisplayName(), catName, core.FormatEuro(f.Amount)),
			core.ActivityFine, f.Amount)
	}
	s.logger.Info("Fine payment toggled",
		applog.FieldOperation, applog.OpToggle,
		applog.FieldMemberID, m.ID,
		applog.FieldFineIndex, index,
		"paid", f.Paid)
	return f, nil
}

// AddGlobalDonation records a donation in the global list. A member id
// attributes the donation to that member and takes the donor name from
// the roster; without one the donor name is required. Amount is a
// user-entered decimal string. An empty date defaults to today.
func (s *Store) AddGlobalDonation(memberID, donorName, amount, date, note string) (*core.Donation, error) {
	v, err := core.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	donorName = strings.TrimSpace(donorName)
	if memberID != "" {
		m := s.ledger.FindMember(memberID)
		if m == nil {
			return nil, core.ErrMemberNotFound
		}
		donorName = m.DisplayName()
	} else if donorName == "" {
		return nil, core.ErrMissingField
	}
	if date == "" {
		date = s.today()
	}
	d := core.Donation{
		ID:        newID(),
		DonorName: donorName,
		MemberID:  memberID,
		Amount:    v,
		Date:      date,
		Note:      strings.TrimSpace(note),
	}
	s.ledger.GlobalDonations = append(s.ledger.GlobalDonations, d)
	added := &s.ledger.GlobalDonations[len(s.ledger.GlobalDonations)-1]
	s.record(fmt.Sprintf("Donation from %s (%s)", donorName, core.FormatEuro(v)),
		core.ActivityDonation, v)
	s.logger.Info("Donation recorded",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldDonor, donorName,
		applog.FieldAmount, v)
	return added, nil
}

// AddCategory creates a taxonomy entry. Macro categories group micro
// ones and carry no amount; micro categories require an existing active
// macro parent and a positive amount.
func (s *Store) AddCategory(name, description, parentKey, amount string, typ core.CategoryType) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.ErrMissingField
	}
	key := CategoryKey(name)
	if _, exists := s.ledger.Categories[key]; exists {
		return "", core.ErrDuplicateCategory
	}

	c := core.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		Type:        typ,
		Active:      true,
		Deletable:   true,
	}
	switch typ {
	case core.CategoryMacro:
		// grouping only, no amount
	case core.CategoryMicro:
		parent, ok := s.ledger.Categories[parentKey]
		if !ok || parent.Type != core.CategoryMacro {
			return "", core.ErrCategoryNotFound
		}
		v, err := core.ParseAmount(amount)
		if err != nil {
			return "", err
		}
		c.Amount = v
		c.ParentCategory = parentKey
	default:
		return "", core.ErrCategoryNotAssignable
	}

	s.ledger.Categories[key] = c
	s.record(fmt.Sprintf("New category: %s", name), core.ActivityCategory, 0)
	s.logger.Info("Category added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldCategory, key)
	return key, nil
}

// UpdateCategory edits name, description and amount of an existing
// entry. The key and type are immutable; existing fines keep the
// amounts they were assigned with.
func (s *Store) UpdateCategory(key, name, description, amount string) error {
	c, ok := s.ledger.Categories[key]
	if !ok {
		return core.ErrCategoryNotFound
	}
	if name = strings.TrimSpace(name); name != "" {
		c.Name = name
	}
	if description != "" {
		c.Description = strings.TrimSpace(description)
	}
	if amount != "" {
		if !c.Assignable(key) {
			return core.ErrCategoryNotAssignable
		}
		v, err := core.ParseAmount(amount)
		if err != nil {
			return err
		}
		c.Amount = v
	}
	s.ledger.Categories[key] = c
	s.record(fmt.Sprintf("Category updated: %s", c.Name), core.ActivityCategory, 0)
	return nil
}

// DeactivateCategory soft-removes a category from assignment. The
// built-in ICS category cannot be deactivated. Historical fines keep
// referencing the key.
func (s *Store) DeactivateCategory(key string) error {
	c, ok := s.ledger.Categories[key]
	if !ok {
		return core.ErrCategoryNotFound
	}
	if !c.Deletable {
		return core.ErrCategoryProtected
	}
	c.Active = false
	s.ledger.Categories[key] = c
	s.record(fmt.Sprintf("Category deactivated: %s", c.Name), core.ActivityCategory, 0)
	return nil
}

// ReactivateCategory reverses a deactivation.
func (s *Store) ReactivateCategory(key string) error {
	c, ok := s.ledger.Categories[key]
	if !ok {
		return core.ErrCategoryNotFound
	}
	c.Active = true
	s.ledger.Categories[key] = c
	s.record(fmt.Sprintf("Category reactivated: %s", c.Name), core.ActivityCategory, 0)
	return nil
}
