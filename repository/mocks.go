package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/harvestcrm/journal/model"
)

// Hand-rolled mocks in the shape of moq output, exported so the service
// tests can stub only the methods they need. Calling an unstubbed
// method panics, which surfaces missing stubs immediately.

// ProviderMock runs Transact callbacks directly and leaves the context
// untouched for Readonly, so service logic can be tested without a
// database.
type ProviderMock struct {
	TransactFunc func(ctx context.Context, fn func(ctx context.Context) error) error
	ReadonlyFunc func(ctx context.Context) context.Context
}

// Transact ...
func (m *ProviderMock) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.TransactFunc != nil {
		return m.TransactFunc(ctx, fn)
	}
	return fn(ctx)
}

// Readonly ...
func (m *ProviderMock) Readonly(ctx context.Context) context.Context {
	if m.ReadonlyFunc != nil {
		return m.ReadonlyFunc(ctx)
	}
	return ctx
}

// JournalMock ...
type JournalMock struct {
	InsertFunc      func(ctx context.Context, journal model.Journal) (int64, error)
	GetFunc         func(ctx context.Context, journalID int64) (model.Journal, bool, error)
	ListFunc        func(ctx context.Context, input ListJournalsInput) ([]model.Journal, error)
	UpdateFunc      func(ctx context.Context, journal model.Journal) error
	SetArchivedFunc func(ctx context.Context, journalID int64, archived bool, now time.Time) error
}

// Insert ...
func (m *JournalMock) Insert(ctx context.Context, journal model.Journal) (int64, error) {
	return m.InsertFunc(ctx, journal)
}

// Get ...
func (m *JournalMock) Get(ctx context.Context, journalID int64) (model.Journal, bool, error) {
	return m.GetFunc(ctx, journalID)
}

// List ...
func (m *JournalMock) List(ctx context.Context, input ListJournalsInput) ([]model.Journal, error) {
	return m.ListFunc(ctx, input)
}

// Update ...
func (m *JournalMock) Update(ctx context.Context, journal model.Journal) error {
	return m.UpdateFunc(ctx, journal)
}

// SetArchived ...
func (m *JournalMock) SetArchived(ctx context.Context, journalID int64, archived bool, now time.Time) error {
	return m.SetArchivedFunc(ctx, journalID, archived, now)
}

// ContactMock ...
type ContactMock struct {
	GetFunc func(ctx context.Context, contactID int64) (model.Contact, bool, error)
}

// Get ...
func (m *ContactMock) Get(ctx context.Context, contactID int64) (model.Contact, bool, error) {
	return m.GetFunc(ctx, contactID)
}

// MembershipMock ...
type MembershipMock struct {
	InsertFunc     func(ctx context.Context, membership model.Membership) (int64, error)
	GetFunc        func(ctx context.Context, membershipID int64) (model.Membership, bool, error)
	FindPairFunc   func(ctx context.Context, journalID, contactID int64) (model.Membership, bool, error)
	ReactivateFunc func(ctx context.Context, membershipID, addedBy int64, now time.Time) error
	DeactivateFunc func(ctx context.Context, membershipID int64) error
	ListFunc       func(ctx context.Context, input ListMembershipsInput) ([]model.MembershipRow, error)
}

// Insert ...
func (m *MembershipMock) Insert(ctx context.Context, membership model.Membership) (int64, error) {
	return m.InsertFunc(ctx, membership)
}

// Get ...
func (m *MembershipMock) Get(ctx context.Context, membershipID int64) (model.Membership, bool, error) {
	return m.GetFunc(ctx, membershipID)
}

// FindPair ...
func (m *MembershipMock) FindPair(ctx context.Context, journalID, contactID int64) (model.Membership, bool, error) {
	return m.FindPairFunc(ctx, journalID, contactID)
}

// Reactivate ...
func (m *MembershipMock) Reactivate(ctx context.Context, membershipID, addedBy int64, now time.Time) error {
	return m.ReactivateFunc(ctx, membershipID, addedBy, now)
}

// Deactivate ...
func (m *MembershipMock) Deactivate(ctx context.Context, membershipID int64) error {
	return m.DeactivateFunc(ctx, membershipID)
}

// List ...
func (m *MembershipMock) List(ctx context.Context, input ListMembershipsInput) ([]model.MembershipRow, error) {
	return m.ListFunc(ctx, input)
}

// StageEventMock ...
type StageEventMock struct {
	InsertFunc           func(ctx context.Context, event model.StageEvent) (int64, error)
	ListByMembershipFunc func(ctx context.Context, membershipID int64, newestFirst bool, limit, offset int64) ([]model.StageEvent, error)

	InsertProjectionFunc       func(ctx context.Context, projection model.StageProjection) error
	GetProjectionForUpdateFunc func(ctx context.Context, membershipID int64) (model.StageProjection, bool, error)
	UpdateProjectionFunc       func(ctx context.Context, projection model.StageProjection) error
	GetProjectionsFunc         func(ctx context.Context, membershipIDs []int64, ownerID sql.NullInt64) ([]model.StageProjection, error)
}

// Insert ...
func (m *StageEventMock) Insert(ctx context.Context, event model.StageEvent) (int64, error) {
	return m.InsertFunc(ctx, event)
}

// ListByMembership ...
func (m *StageEventMock) ListByMembership(
	ctx context.Context, membershipID int64, newestFirst bool, limit, offset int64,
) ([]model.StageEvent, error) {
	return m.ListByMembershipFunc(ctx, membershipID, newestFirst, limit, offset)
}

// InsertProjection ...
func (m *StageEventMock) InsertProjection(ctx context.Context, projection model.StageProjection) error {
	return m.InsertProjectionFunc(ctx, projection)
}

// GetProjectionForUpdate ...
func (m *StageEventMock) GetProjectionForUpdate(
	ctx context.Context, membershipID int64,
) (model.StageProjection, bool, error) {
	return m.GetProjectionForUpdateFunc(ctx, membershipID)
}

// UpdateProjection ...
func (m *StageEventMock) UpdateProjection(ctx context.Context, projection model.StageProjection) error {
	return m.UpdateProjectionFunc(ctx, projection)
}

// GetProjections ...
func (m *StageEventMock) GetProjections(
	ctx context.Context, membershipIDs []int64, ownerID sql.NullInt64,
) ([]model.StageProjection, error) {
	return m.GetProjectionsFunc(ctx, membershipIDs, ownerID)
}

// CommitmentMock ...
type CommitmentMock struct {
	GetByMembershipFunc          func(ctx context.Context, membershipID int64) (model.Commitment, bool, error)
	GetByMembershipForUpdateFunc func(ctx context.Context, membershipID int64) (model.Commitment, bool, error)
	InsertFunc                   func(ctx context.Context, commitment model.Commitment) (int64, error)
	UpdateFunc                   func(ctx context.Context, commitment model.Commitment) error
	InsertHistoryFunc            func(ctx context.Context, history model.CommitmentHistory) (int64, error)
	ListHistoryFunc              func(ctx context.Context, commitmentID int64, limit, offset int64) ([]model.CommitmentHistory, error)
	CountHistoryFunc             func(ctx context.Context, commitmentID int64) (int64, error)
}

// GetByMembership ...
func (m *CommitmentMock) GetByMembership(ctx context.Context, membershipID int64) (model.Commitment, bool, error) {
	return m.GetByMembershipFunc(ctx, membershipID)
}

// GetByMembershipForUpdate ...
func (m *CommitmentMock) GetByMembershipForUpdate(
	ctx context.Context, membershipID int64,
) (model.Commitment, bool, error) {
	return m.GetByMembershipForUpdateFunc(ctx, membershipID)
}

// Insert ...
func (m *CommitmentMock) Insert(ctx context.Context, commitment model.Commitment) (int64, error) {
	return m.InsertFunc(ctx, commitment)
}

// Update ...
func (m *CommitmentMock) Update(ctx context.Context, commitment model.Commitment) error {
	return m.UpdateFunc(ctx, commitment)
}

// InsertHistory ...
func (m *CommitmentMock) InsertHistory(ctx context.Context, history model.CommitmentHistory) (int64, error) {
	return m.InsertHistoryFunc(ctx, history)
}

// ListHistory ...
func (m *CommitmentMock) ListHistory(
	ctx context.Context, commitmentID int64, limit, offset int64,
) ([]model.CommitmentHistory, error) {
	return m.ListHistoryFunc(ctx, commitmentID, limit, offset)
}

// CountHistory ...
func (m *CommitmentMock) CountHistory(ctx context.Context, commitmentID int64) (int64, error) {
	return m.CountHistoryFunc(ctx, commitmentID)
}

// NextStepMock ...
type NextStepMock struct {
	InsertFunc           func(ctx context.Context, step model.NextStep) (int64, error)
	GetFunc              func(ctx context.Context, stepID int64) (model.NextStep, bool, error)
	ListByMembershipFunc func(ctx context.Context, membershipID int64, completed sql.NullBool) ([]model.NextStep, error)
	UpdateFunc           func(ctx context.Context, step model.NextStep) error
	DeleteFunc           func(ctx context.Context, stepID int64) error
	NextOrdinalFunc      func(ctx context.Context, membershipID int64) (int64, error)
}

// Insert ...
func (m *NextStepMock) Insert(ctx context.Context, step model.NextStep) (int64, error) {
	return m.InsertFunc(ctx, step)
}

// Get ...
func (m *NextStepMock) Get(ctx context.Context, stepID int64) (model.NextStep, bool, error) {
	return m.GetFunc(ctx, stepID)
}

// ListByMembership ...
func (m *NextStepMock) ListByMembership(
	ctx context.Context, membershipID int64, completed sql.NullBool,
) ([]model.NextStep, error) {
	return m.ListByMembershipFunc(ctx, membershipID, completed)
}

// Update ...
func (m *NextStepMock) Update(ctx context.Context, step model.NextStep) error {
	return m.UpdateFunc(ctx, step)
}

// Delete ...
func (m *NextStepMock) Delete(ctx context.Context, stepID int64) error {
	return m.DeleteFunc(ctx, stepID)
}

// NextOrdinal ...
func (m *NextStepMock) NextOrdinal(ctx context.Context, membershipID int64) (int64, error) {
	return m.NextOrdinalFunc(ctx, membershipID)
}

// AnalyticsMock ...
type AnalyticsMock struct {
	CommitmentTrendFunc   func(ctx context.Context, ownerID sql.NullInt64) ([]model.TrendPoint, error)
	StageActivityFunc     func(ctx context.Context, ownerID sql.NullInt64) ([]model.StageActivityPoint, error)
	PipelineBreakdownFunc func(ctx context.Context, ownerID, journalID sql.NullInt64) ([]model.BreakdownItem, error)
	NextStepQueueFunc     func(ctx context.Context, ownerID sql.NullInt64, limit int64) ([]model.QueueItem, error)

	CountActiveJournalsFunc func(ctx context.Context) (int64, error)
	CountCommitmentsFunc    func(ctx context.Context) (int64, error)
	JournalsByOwnerFunc     func(ctx context.Context) ([]model.OwnerJournalCount, error)
}

// CommitmentTrend ...
func (m *AnalyticsMock) CommitmentTrend(ctx context.Context, ownerID sql.NullInt64) ([]model.TrendPoint, error) {
	return m.CommitmentTrendFunc(ctx, ownerID)
}

// StageActivity ...
func (m *AnalyticsMock) StageActivity(ctx context.Context, ownerID sql.NullInt64) ([]model.StageActivityPoint, error) {
	return m.StageActivityFunc(ctx, ownerID)
}

// PipelineBreakdown ...
func (m *AnalyticsMock) PipelineBreakdown(
	ctx context.Context, ownerID, journalID sql.NullInt64,
) ([]model.BreakdownItem, error) {
	return m.PipelineBreakdownFunc(ctx, ownerID, journalID)
}

// NextStepQueue ...
func (m *AnalyticsMock) NextStepQueue(
	ctx context.Context, ownerID sql.NullInt64, limit int64,
) ([]model.QueueItem, error) {
	return m.NextStepQueueFunc(ctx, ownerID, limit)
}

// CountActiveJournals ...
func (m *AnalyticsMock) CountActiveJournals(ctx context.Context) (int64, error) {
	return m.CountActiveJournalsFunc(ctx)
}

// CountCommitments ...
func (m *AnalyticsMock) CountCommitments(ctx context.Context) (int64, error) {
	return m.CountCommitmentsFunc(ctx)
}

// JournalsByOwner ...
func (m *AnalyticsMock) JournalsByOwner(ctx context.Context) ([]model.OwnerJournalCount, error) {
	return m.JournalsByOwnerFunc(ctx)
}
