package gifts

import (
	"context"
	"testing"
	"time"

	"gatherly-backend/internal/events"
	"gatherly-backend/internal/guests"
	"gatherly-backend/internal/invitations"
	"gatherly-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type giftFixture struct {
	svc       *Service
	db        *gorm.DB
	organizer models.User
	event     models.Event
	// maria and sam have accepted invitations, lena is still pending
	maria models.Guest
	sam   models.Guest
	lena  models.Guest
}

func setupGiftTest(t *testing.T) *giftFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Event{}, &models.Guest{}, &models.Invitation{}, &models.GiftItem{}))

	f := &giftFixture{db: db}
	f.organizer = models.User{Fullname: "Olivia Organizer", Email: "olivia@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&f.organizer).Error)

	f.event = models.Event{OrganizerID: f.organizer.UserID, Name: "Housewarming"}
	require.NoError(t, db.Create(&f.event).Error)

	f.maria = models.Guest{EventID: f.event.EventID, Name: "Maria Lopez", Email: "maria@example.com"}
	f.sam = models.Guest{EventID: f.event.EventID, Name: "Sam Smith", Email: "sam@example.com"}
	f.lena = models.Guest{EventID: f.event.EventID, Name: "Lena Berg", Email: "lena@example.com"}
	require.NoError(t, db.Create(&f.maria).Error)
	require.NoError(t, db.Create(&f.sam).Error)
	require.NoError(t, db.Create(&f.lena).Error)

	invite := func(g models.Guest, status string) {
		inv := models.Invitation{EventID: f.event.EventID, GuestID: g.GuestID, Token: uuid.NewString(), Status: status}
		require.NoError(t, db.Create(&inv).Error)
	}
	invite(f.maria, models.InvitationYes)
	invite(f.sam, models.InvitationYes)
	invite(f.lena, models.InvitationPending)

	eventService := &events.Service{DB: db}
	guestService := &guests.Service{DB: db, Events: eventService}
	f.svc = &Service{
		DB:          db,
		Events:      eventService,
		Guests:      guestService,
		Invitations: &invitations.Service{DB: db, Events: eventService, Guests: guestService},
	}
	return f
}

func (f *giftFixture) createItem(t *testing.T, name string, quantity int) *ItemView {
	t.Helper()
	v, err := f.svc.CreateItem(context.Background(), CreateItemInput{
		EventID:     f.event.EventID,
		OrganizerID: f.organizer.UserID,
		Name:        name,
		Quantity:    quantity,
	})
	require.NoError(t, err)
	return v
}

func (f *giftFixture) reload(t *testing.T, giftID uuid.UUID) *models.GiftItem {
	t.Helper()
	var item models.GiftItem
	require.NoError(t, f.db.Where("gift_id = ?", giftID).First(&item).Error)
	return &item
}

func TestCreateItemAppendsToOrder(t *testing.T) {
	f := setupGiftTest(t)

	first := f.createItem(t, "Toaster", 1)
	second := f.createItem(t, "Wine glasses", 6)

	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, StatusAvailable, first.Status)
	assert.Equal(t, 0, first.QuantityReserved)
}

func TestCreateItemValidation(t *testing.T) {
	f := setupGiftTest(t)
	ctx := context.Background()

	_, err := f.svc.CreateItem(ctx, CreateItemInput{EventID: f.event.EventID, OrganizerID: f.organizer.UserID, Quantity: 1})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = f.svc.CreateItem(ctx, CreateItemInput{EventID: f.event.EventID, OrganizerID: f.organizer.UserID, Name: "Vase", Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// Not the organizer: the event is reported as missing, not forbidden.
	_, err = f.svc.CreateItem(ctx, CreateItemInput{EventID: f.event.EventID, OrganizerID: uuid.New(), Name: "Vase", Quantity: 1})
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}

func TestAssignReservesQuantity(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Wine glasses", 6)

	view, err := f.svc.Assign(context.Background(), AssignInput{
		EventID:  f.event.EventID,
		GiftID:   item.GiftID,
		GuestID:  f.maria.GuestID,
		Quantity: 2,
		Message:  "picked the red ones",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, view.QuantityReserved)
	assert.Equal(t, StatusPartially, view.Status)
	assert.Equal(t, 33, view.ReservationPercentage)
	require.NotNil(t, view.IsReservedByCurrentGuest)
	assert.True(t, *view.IsReservedByCurrentGuest)
	require.NotNil(t, view.CurrentGuestReservation)
	assert.Equal(t, "picked the red ones", view.CurrentGuestReservation.Message)

	stored := f.reload(t, item.GiftID)
	require.Len(t, stored.Reservations, 1)
	assert.Equal(t, f.maria.GuestID, stored.Reservations[0].GuestID)
	assert.Equal(t, 1, stored.LockVersion)
}

func TestAssignRejectsDuplicateGuest(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Toaster", 3)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 1})
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	// The failed attempt must not mutate anything.
	stored := f.reload(t, item.GiftID)
	assert.Len(t, stored.Reservations, 1)
	assert.Equal(t, 1, QuantityReserved(stored))
}

func TestAssignRejectsInsufficientQuantity(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Fondue set", 2)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.sam.GuestID, Quantity: 1})
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	stored := f.reload(t, item.GiftID)
	assert.Equal(t, 2, QuantityReserved(stored))
	assert.Equal(t, StatusReserved, Status(stored))
}

func TestAssignRequiresAcceptedInvitation(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Toaster", 1)

	_, err := f.svc.Assign(context.Background(), AssignInput{
		EventID:  f.event.EventID,
		GiftID:   item.GiftID,
		GuestID:  f.lena.GuestID,
		Quantity: 1,
	})
	assert.ErrorIs(t, err, invitations.ErrNoAcceptedInvite)
	assert.Empty(t, f.reload(t, item.GiftID).Reservations)
}

func TestAssignUnknownGuest(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Toaster", 1)

	_, err := f.svc.Assign(context.Background(), AssignInput{
		EventID:  f.event.EventID,
		GiftID:   item.GiftID,
		GuestID:  uuid.New(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, guests.ErrGuestNotFound)
}

func TestAssignItemScopedToEvent(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Toaster", 1)

	otherEvent := models.Event{OrganizerID: f.organizer.UserID, Name: "Other"}
	require.NoError(t, f.db.Create(&otherEvent).Error)
	stray := models.Guest{EventID: otherEvent.EventID, Name: "Stray"}
	require.NoError(t, f.db.Create(&stray).Error)
	inv := models.Invitation{EventID: otherEvent.EventID, GuestID: stray.GuestID, Token: uuid.NewString(), Status: models.InvitationYes}
	require.NoError(t, f.db.Create(&inv).Error)

	_, err := f.svc.Assign(context.Background(), AssignInput{
		EventID:  otherEvent.EventID,
		GiftID:   item.GiftID,
		GuestID:  stray.GuestID,
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrGiftNotFound)
}

func TestUnassignRemovesOnlyOwnReservation(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Wine glasses", 6)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.sam.GuestID, Quantity: 3})
	require.NoError(t, err)

	view, err := f.svc.Unassign(ctx, UnassignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID})
	require.NoError(t, err)
	assert.Equal(t, 3, view.QuantityReserved)
	require.NotNil(t, view.IsReservedByCurrentGuest)
	assert.False(t, *view.IsReservedByCurrentGuest)

	stored := f.reload(t, item.GiftID)
	require.Len(t, stored.Reservations, 1)
	assert.Equal(t, f.sam.GuestID, stored.Reservations[0].GuestID)
}

func TestUnassignWithoutReservation(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Toaster", 1)

	_, err := f.svc.Unassign(context.Background(), UnassignInput{
		EventID: f.event.EventID,
		GiftID:  item.GiftID,
		GuestID: f.maria.GuestID,
	})
	assert.ErrorIs(t, err, ErrNotReserved)
}

// Two actors read the same row, the first write wins and the second gets a
// conflict instead of silently over-booking.
func TestSaveReservationsDetectsLostRace(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Espresso machine", 1)
	ctx := context.Background()

	copy1, err := f.svc.findItem(ctx, f.event.EventID, item.GiftID)
	require.NoError(t, err)
	copy2, err := f.svc.findItem(ctx, f.event.EventID, item.GiftID)
	require.NoError(t, err)

	res1 := []models.Reservation{{GuestID: f.maria.GuestID, Quantity: 1, CreatedAt: time.Now()}}
	require.NoError(t, f.svc.saveReservations(ctx, copy1, res1))

	res2 := []models.Reservation{{GuestID: f.sam.GuestID, Quantity: 1, CreatedAt: time.Now()}}
	err = f.svc.saveReservations(ctx, copy2, res2)
	assert.ErrorIs(t, err, ErrReservationConflict)

	stored := f.reload(t, item.GiftID)
	require.Len(t, stored.Reservations, 1)
	assert.Equal(t, f.maria.GuestID, stored.Reservations[0].GuestID)
	assert.Equal(t, 1, stored.LockVersion)
}

// Assign always reads the current row, so a version bump from another writer
// does not make it fail; capacity is enforced against the fresh state.
func TestAssignSeesLatestStateAfterConcurrentWrite(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Espresso machine", 2)
	ctx := context.Background()

	// Simulate a writer that slipped in: the stored row already carries
	// sam's reservation and a newer version.
	stored := f.reload(t, item.GiftID)
	require.NoError(t, f.svc.saveReservations(ctx, stored, []models.Reservation{
		{GuestID: f.sam.GuestID, Quantity: 1, CreatedAt: time.Now()},
	}))

	view, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, view.QuantityReserved)
	assert.Equal(t, StatusReserved, view.Status)
}

func TestDeleteItemRenumbersRemaining(t *testing.T) {
	f := setupGiftTest(t)
	a := f.createItem(t, "A", 1)
	b := f.createItem(t, "B", 1)
	c := f.createItem(t, "C", 1)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteItem(ctx, f.event.EventID, b.GiftID, f.organizer.UserID))

	assert.Equal(t, 1, f.reload(t, a.GiftID).ItemOrder)
	assert.Equal(t, 2, f.reload(t, c.GiftID).ItemOrder)

	_, err := f.svc.findItem(ctx, f.event.EventID, b.GiftID)
	assert.ErrorIs(t, err, ErrGiftNotFound)
}

func TestDeleteItemOwnershipAndExistence(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Toaster", 1)
	ctx := context.Background()

	err := f.svc.DeleteItem(ctx, f.event.EventID, item.GiftID, uuid.New())
	assert.ErrorIs(t, err, events.ErrEventNotFound)

	err = f.svc.DeleteItem(ctx, f.event.EventID, uuid.New(), f.organizer.UserID)
	assert.ErrorIs(t, err, ErrGiftNotFound)
}

func TestReorderAppliesEntries(t *testing.T) {
	f := setupGiftTest(t)
	a := f.createItem(t, "A", 1)
	b := f.createItem(t, "B", 1)
	c := f.createItem(t, "C", 1)

	views, err := f.svc.Reorder(context.Background(), f.event.EventID, f.organizer.UserID, []ReorderEntry{
		{GiftID: a.GiftID, Order: 3},
		{GiftID: b.GiftID, Order: 1},
		{GiftID: c.GiftID, Order: 2},
		{GiftID: uuid.New(), Order: 4}, // unknown id is skipped
	})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "B", views[0].Name)
	assert.Equal(t, "C", views[1].Name)
	assert.Equal(t, "A", views[2].Name)
}

func TestListItemsSortsEssentialFirst(t *testing.T) {
	f := setupGiftTest(t)
	f.createItem(t, "Plain", 1)
	essential, err := f.svc.CreateItem(context.Background(), CreateItemInput{
		EventID:     f.event.EventID,
		OrganizerID: f.organizer.UserID,
		Name:        "Essential",
		Quantity:    1,
		IsEssential: true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, essential.Order)

	views, err := f.svc.ListItems(context.Background(), ListItemsInput{EventID: f.event.EventID})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Essential", views[0].Name)
	assert.Equal(t, "Plain", views[1].Name)
}

func TestListItemsStatusFilter(t *testing.T) {
	f := setupGiftTest(t)
	free := f.createItem(t, "Free", 2)
	taken := f.createItem(t, "Taken", 1)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: taken.GiftID, GuestID: f.maria.GuestID, Quantity: 1})
	require.NoError(t, err)

	views, err := f.svc.ListItems(ctx, ListItemsInput{EventID: f.event.EventID, Status: StatusAvailable})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, free.GiftID, views[0].GiftID)

	views, err = f.svc.ListItems(ctx, ListItemsInput{EventID: f.event.EventID, Status: StatusReserved})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, taken.GiftID, views[0].GiftID)

	_, err = f.svc.ListItems(ctx, ListItemsInput{EventID: f.event.EventID, Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)
}

func TestListItemsRedactsForNonOrganizerViewer(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Wine glasses", 6)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 2, Message: "private"})
	require.NoError(t, err)

	// Anonymous viewer sees first names and quantities only.
	views, err := f.svc.ListItems(ctx, ListItemsInput{EventID: f.event.EventID})
	require.NoError(t, err)
	public, ok := views[0].Reservations.([]PublicReservation)
	require.True(t, ok)
	require.Len(t, public, 1)
	assert.Equal(t, "Maria", public[0].GuestName)
	assert.Equal(t, 2, public[0].Quantity)

	// Organizer sees everything.
	views, err = f.svc.ListItems(ctx, ListItemsInput{EventID: f.event.EventID, ViewerID: f.organizer.UserID})
	require.NoError(t, err)
	full, ok := views[0].Reservations.([]models.Reservation)
	require.True(t, ok)
	require.Len(t, full, 1)
	assert.Equal(t, "private", full[0].Message)
}

func TestGuestReservations(t *testing.T) {
	f := setupGiftTest(t)
	glasses := f.createItem(t, "Wine glasses", 6)
	toaster := f.createItem(t, "Toaster", 1)
	f.createItem(t, "Vase", 1)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: glasses.GiftID, GuestID: f.maria.GuestID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: toaster.GiftID, GuestID: f.sam.GuestID, Quantity: 1})
	require.NoError(t, err)

	mine, err := f.svc.GuestReservations(ctx, f.event.EventID, f.maria.GuestID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, glasses.GiftID, mine[0].GiftID)
	require.NotNil(t, mine[0].CurrentGuestReservation)
	assert.Equal(t, 2, mine[0].CurrentGuestReservation.Quantity)

	_, err = f.svc.GuestReservations(ctx, f.event.EventID, uuid.New())
	assert.ErrorIs(t, err, guests.ErrGuestNotFound)
}

func TestUpdateItemWhitelist(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Toaster", 2)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 1})
	require.NoError(t, err)

	name := "Four-slice toaster"
	quantity := 4
	view, err := f.svc.UpdateItem(ctx, UpdateItemInput{
		EventID:     f.event.EventID,
		GiftID:      item.GiftID,
		OrganizerID: f.organizer.UserID,
		Name:        &name,
		Quantity:    &quantity,
	})
	require.NoError(t, err)
	assert.Equal(t, "Four-slice toaster", view.Name)
	assert.Equal(t, 4, view.Quantity)

	// Order and reservations survive the update untouched.
	stored := f.reload(t, item.GiftID)
	assert.Equal(t, 1, stored.ItemOrder)
	require.Len(t, stored.Reservations, 1)
	assert.Equal(t, f.maria.GuestID, stored.Reservations[0].GuestID)

	bad := 0
	_, err = f.svc.UpdateItem(ctx, UpdateItemInput{
		EventID:     f.event.EventID,
		GiftID:      item.GiftID,
		OrganizerID: f.organizer.UserID,
		Quantity:    &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

// Whatever sequence of assigns and unassigns ran, the stored reserved total
// always equals the sum over the reservation list.
func TestReservedTotalMatchesReservationSum(t *testing.T) {
	f := setupGiftTest(t)
	item := f.createItem(t, "Wine glasses", 6)
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, AssignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.sam.GuestID, Quantity: 3})
	require.NoError(t, err)
	_, err = f.svc.Unassign(ctx, UnassignInput{EventID: f.event.EventID, GiftID: item.GiftID, GuestID: f.maria.GuestID})
	require.NoError(t, err)

	stored := f.reload(t, item.GiftID)
	sum := 0
	for _, r := range stored.Reservations {
		sum += r.Quantity
	}
	assert.Equal(t, sum, QuantityReserved(stored))
	assert.Equal(t, 3, sum)
	assert.LessOrEqual(t, sum, stored.Quantity)
}
