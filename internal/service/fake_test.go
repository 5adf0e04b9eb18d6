package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"coupon-service/internal/events"
	"coupon-service/internal/model"
)

// memRepo is an in-memory Repository. WithTx serializes callers the way the
// campaign row lock does in Postgres; there is no rollback.
type memRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex

	stores    map[string]model.Store
	campaigns map[string]model.Campaign
	coupons   map[string]model.IndividualCoupon
	clock     time.Time

	// onMarkAssigned runs before MarkAssigned applies, to simulate a concurrent writer
	onMarkAssigned func(id string)
}

func newMemRepo() *memRepo {
	return &memRepo{
		stores:    map[string]model.Store{},
		campaigns: map[string]model.Campaign{},
		coupons:   map[string]model.IndividualCoupon{},
		clock:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing creation times
func (r *memRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memRepo) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

func (r *memRepo) Ping(ctx context.Context) error { return nil }

func (r *memRepo) FindStoreByUser(ctx context.Context, userID string) (*model.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.UserID == userID {
			return &s, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memRepo) FindStoreByID(ctx context.Context, id string) (*model.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &s, nil
}

func (r *memRepo) UpsertStore(ctx context.Context, store *model.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *model.Store
	for _, s := range r.stores {
		if s.CNPJ == store.CNPJ && s.UserID != store.UserID {
			return &model.DuplicateError{Constraint: "idx_stores_cnpj"}
		}
		if s.UserID == store.UserID {
			s := s
			current = &s
		}
	}

	now := r.tick()
	if current != nil {
		store.ID = current.ID
		store.CreatedAt = current.CreatedAt
	} else {
		store.ID = uuid.NewString()
		store.CreatedAt = now
	}
	store.UpdatedAt = now
	r.stores[store.ID] = *store
	return nil
}

func (r *memRepo) DeleteStoreByUser(ctx context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.stores {
		if s.UserID != userID {
			continue
		}
		delete(r.stores, id)
		for cid, c := range r.campaigns {
			if c.StoreID == id {
				r.deleteCampaignLocked(cid)
			}
		}
		return true, nil
	}
	return false, nil
}

func (r *memRepo) ListCampaignsByUser(ctx context.Context, userID string) ([]model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Campaign
	for _, c := range r.campaigns {
		store := r.stores[c.StoreID]
		if store.UserID == userID {
			c.Store = &store
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) ListVisibleCampaigns(ctx context.Context, storeID string) ([]model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Campaign
	for _, c := range r.campaigns {
		if c.StoreID == storeID && c.Visible {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) CampaignCodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.campaigns {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CreateCampaign(ctx context.Context, campaign *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.campaigns {
		if c.Code == campaign.Code {
			return &model.DuplicateError{Constraint: "idx_campaigns_code"}
		}
	}
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	campaign.CreatedAt = r.tick()
	campaign.UpdatedAt = campaign.CreatedAt
	r.campaigns[campaign.ID] = *campaign
	return nil
}

func (r *memRepo) FindOwnedCampaign(ctx context.Context, id, userID string, forUpdate bool) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || r.stores[c.StoreID].UserID != userID {
		return nil, model.ErrNotFound
	}
	return &c, nil
}

func (r *memRepo) UpdateCampaign(ctx context.Context, campaign *model.Campaign, columns []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	campaign.UpdatedAt = r.tick()
	r.campaigns[campaign.ID] = *campaign
	return nil
}

func (r *memRepo) DeleteCampaign(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCampaignLocked(id)
	return nil
}

func (r *memRepo) deleteCampaignLocked(id string) {
	delete(r.campaigns, id)
	for icID, ic := range r.coupons {
		if ic.CampaignID == id {
			delete(r.coupons, icID)
		}
	}
}

func (r *memRepo) FindIndividualCoupon(ctx context.Context, id string) (*model.IndividualCoupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ic, ok := r.coupons[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &ic, nil
}

func (r *memRepo) ListIndividualCoupons(ctx context.Context, campaignID string) ([]model.IndividualCoupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.IndividualCoupon
	for _, ic := range r.coupons {
		if ic.CampaignID == campaignID {
			c := r.campaigns[campaignID]
			ic.Campaign = &c
			out = append(out, ic)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) CountIndividualCoupons(ctx context.Context, campaignID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, ic := range r.coupons {
		if ic.CampaignID == campaignID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ExistingIndividualCodes(ctx context.Context, codes []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	used := r.codesLocked()
	var out []string
	for _, code := range codes {
		if _, ok := used[code]; ok {
			out = append(out, code)
		}
	}
	return out, nil
}

func (r *memRepo) CreateIndividualCoupons(ctx context.Context, coupons []model.IndividualCoupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	used := r.codesLocked()
	for i := range coupons {
		if _, ok := used[coupons[i].Code]; ok {
			return &model.DuplicateError{Constraint: "idx_individual_coupons_code"}
		}
		used[coupons[i].Code] = struct{}{}
		coupons[i].ID = uuid.NewString()
		coupons[i].CreatedAt = r.tick()
		coupons[i].UpdatedAt = coupons[i].CreatedAt
		r.coupons[coupons[i].ID] = coupons[i]
	}
	return nil
}

func (r *memRepo) codesLocked() map[string]struct{} {
	used := make(map[string]struct{}, len(r.coupons))
	for _, ic := range r.coupons {
		used[ic.Code] = struct{}{}
	}
	return used
}

func identifierOf(ic model.IndividualCoupon, field Identifier) *string {
	switch field {
	case IdentifierPhone:
		return ic.Phone
	case IdentifierCPF:
		return ic.CPF
	default:
		return ic.Email
	}
}

func (r *memRepo) IdentifierAssigned(ctx context.Context, campaignID string, field Identifier, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ic := range r.coupons {
		if ic.CampaignID != campaignID || !ic.Assigned() {
			continue
		}
		if v := identifierOf(ic, field); v != nil && *v == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) MarkAssigned(ctx context.Context, id string, a Assignment) (bool, error) {
	if r.onMarkAssigned != nil {
		r.onMarkAssigned(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ic, ok := r.coupons[id]
	if !ok || ic.Assigned() {
		return false, nil
	}

	ic.Phone, ic.CPF, ic.Email = a.Phone, a.CPF, a.Email
	at := a.AssignedAt
	ic.AssignedAt = &at
	ic.Status = model.IndividualStatusAssigned
	r.coupons[id] = ic
	return true, nil
}

// assignDirect marks a coupon assigned without any checks
func (r *memRepo) assignDirect(id string, cpf string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ic := r.coupons[id]
	at := r.tick()
	ic.CPF = &cpf
	ic.AssignedAt = &at
	ic.Status = model.IndividualStatusAssigned
	r.coupons[id] = ic
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
