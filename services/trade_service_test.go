package services

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trashure/api-go/models"
	"gorm.io/gorm"
)

func newTradeService(db *gorm.DB) *TradeService {
	economy := testEconomy()
	svc := NewTradeService(db, NewLedgerService(economy), economy)
	svc.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func pendingOffer(t *testing.T, svc *TradeService, conversationID, senderID, receiverID, requestedID uint, offeredID *uint, credits int64) *models.TradeOffer {
	t.Helper()

	offer, err := svc.CreateOffer(CreateTradeOfferInput{
		ConversationID:     conversationID,
		SenderID:           senderID,
		ReceiverID:         receiverID,
		RequestedListingID: requestedID,
		OfferedListingID:   offeredID,
		AdditionalCredits:  credits,
	})
	require.NoError(t, err)
	return offer
}

func TestCreateOffer_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	theirListing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	_, err := svc.CreateOffer(CreateTradeOfferInput{
		ConversationID:     conversation.ID,
		SenderID:           sender.ID,
		ReceiverID:         sender.ID,
		RequestedListingID: theirListing.ID,
	})
	assert.ErrorIs(t, err, ErrSelfTrade)

	// Requested listing must belong to the receiver.
	myListing := createTestListing(t, db, sender.ID, 50, models.ListingStatusActive)
	_, err = svc.CreateOffer(CreateTradeOfferInput{
		ConversationID:     conversation.ID,
		SenderID:           sender.ID,
		ReceiverID:         receiver.ID,
		RequestedListingID: myListing.ID,
	})
	assert.ErrorIs(t, err, ErrOwnershipMismatch)

	// Requested listing must be active.
	soldListing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusSold)
	_, err = svc.CreateOffer(CreateTradeOfferInput{
		ConversationID:     conversation.ID,
		SenderID:           sender.ID,
		ReceiverID:         receiver.ID,
		RequestedListingID: soldListing.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidListing)

	// Offered listing must belong to the sender.
	_, err = svc.CreateOffer(CreateTradeOfferInput{
		ConversationID:     conversation.ID,
		SenderID:           sender.ID,
		ReceiverID:         receiver.ID,
		RequestedListingID: theirListing.ID,
		OfferedListingID:   &theirListing.ID,
	})
	assert.ErrorIs(t, err, ErrOwnershipMismatch)

	// Sweetener must be covered by the sender's balance at creation time.
	_, err = svc.CreateOffer(CreateTradeOfferInput{
		ConversationID:     conversation.ID,
		SenderID:           sender.ID,
		ReceiverID:         receiver.ID,
		RequestedListingID: theirListing.ID,
		AdditionalCredits:  500,
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCreateOffer_SetsPendingAndDeadline(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 20)

	assert.Equal(t, models.TradeOfferStatusPending, offer.Status)
	assert.Equal(t, svc.Now().Add(svc.Economy.OfferTTL), offer.ExpiresAt)
	assert.Equal(t, int64(100), reloadUser(t, db, sender.ID).Credits, "creating an offer never moves credits")
}

func TestAccept_TwoListingSwap(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	userA := createTestUser(t, db, 100, 70)
	userB := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, userA.ID, userB.ID)
	listingL1 := createTestListing(t, db, userA.ID, 50, models.ListingStatusActive)
	listingL2 := createTestListing(t, db, userB.ID, 80, models.ListingStatusActive)
	before := totalCredits(t, db)

	offer := pendingOffer(t, svc, conversation.ID, userA.ID, userB.ID, listingL2.ID, &listingL1.ID, 20)

	accepted, err := svc.Accept(offer.ID, userB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeOfferStatusAccepted, accepted.Status)

	assert.Equal(t, userB.ID, reloadListing(t, db, listingL1.ID).UserID, "offered listing goes to the receiver")
	assert.Equal(t, userA.ID, reloadListing(t, db, listingL2.ID).UserID, "requested listing goes to the sender")
	assert.Equal(t, int64(80), reloadUser(t, db, userA.ID).Credits)
	assert.Equal(t, int64(120), reloadUser(t, db, userB.ID).Credits)
	assert.Equal(t, 75, reloadUser(t, db, userA.ID).TrustScore)
	assert.Equal(t, 75, reloadUser(t, db, userB.ID).TrustScore)
	assert.Equal(t, before, totalCredits(t, db), "credits must be conserved")
}

func TestAccept_CreditsOnlyOffer(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 60)

	_, err := svc.Accept(offer.ID, receiver.ID)
	require.NoError(t, err)

	assert.Equal(t, sender.ID, reloadListing(t, db, listing.ID).UserID)
	assert.Equal(t, models.ListingStatusActive, reloadListing(t, db, listing.ID).Status, "a traded listing stays active under its new owner")
	assert.Equal(t, int64(40), reloadUser(t, db, sender.ID).Credits)
	assert.Equal(t, int64(160), reloadUser(t, db, receiver.ID).Credits)
}

func TestAccept_OnlyReceiverMayAccept(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	stranger := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 0)

	_, err := svc.Accept(offer.ID, sender.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Accept(offer.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAccept_TerminalStatesAreFinal(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 20)

	_, err := svc.Accept(offer.ID, receiver.ID)
	require.NoError(t, err)

	senderCredits := reloadUser(t, db, sender.ID).Credits
	receiverTrust := reloadUser(t, db, receiver.ID).TrustScore

	_, err = svc.Accept(offer.ID, receiver.ID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	_, err = svc.Decline(offer.ID, receiver.ID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	assert.Equal(t, senderCredits, reloadUser(t, db, sender.ID).Credits, "a second accept must not move credits again")
	assert.Equal(t, receiverTrust, reloadUser(t, db, receiver.ID).TrustScore, "a second accept must not re-award trust")
}

func TestAccept_ExpiredOffer(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 20)

	// Jump past the deadline.
	created := svc.Now()
	svc.Now = func() time.Time { return created.Add(8 * 24 * time.Hour) }

	_, err := svc.Accept(offer.ID, receiver.ID)
	assert.ErrorIs(t, err, ErrOfferExpired)

	var reloaded models.TradeOffer
	require.NoError(t, db.First(&reloaded, offer.ID).Error)
	assert.Equal(t, models.TradeOfferStatusExpired, reloaded.Status, "expiry is materialized on touch")

	assert.Equal(t, int64(100), reloadUser(t, db, sender.ID).Credits)
	assert.Equal(t, receiver.ID, reloadListing(t, db, listing.ID).UserID)
}

func TestAccept_PreconditionFailedLeavesOfferPending(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 60)

	// The sender's balance drops between creation and acceptance.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", sender.ID).Update("credits", 10).Error)

	_, err := svc.Accept(offer.ID, receiver.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	var reloaded models.TradeOffer
	require.NoError(t, db.First(&reloaded, offer.ID).Error)
	assert.Equal(t, models.TradeOfferStatusPending, reloaded.Status, "a failed precondition must not auto-decline")

	// Refill and retry: the offer is still actionable.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", sender.ID).Update("credits", 100).Error)
	_, err = svc.Accept(offer.ID, receiver.ID)
	require.NoError(t, err)
}

func TestAccept_RequestedListingGone(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 0)

	// Listing sold out from under the offer.
	require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", listing.ID).Update("status", models.ListingStatusSold).Error)

	_, err := svc.Accept(offer.ID, receiver.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	var reloaded models.TradeOffer
	require.NoError(t, db.First(&reloaded, offer.ID).Error)
	assert.Equal(t, models.TradeOfferStatusPending, reloaded.Status)
}

func TestDecline(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 20)

	_, err := svc.Decline(offer.ID, sender.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	declined, err := svc.Decline(offer.ID, receiver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeOfferStatusDeclined, declined.Status)

	// No economic side effects.
	assert.Equal(t, int64(100), reloadUser(t, db, sender.ID).Credits)
	assert.Equal(t, 70, reloadUser(t, db, receiver.ID).TrustScore)
	assert.Equal(t, receiver.ID, reloadListing(t, db, listing.ID).UserID)
}

func TestDecline_ExpiredOfferMaterializesExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 0)

	created := svc.Now()
	svc.Now = func() time.Time { return created.Add(8 * 24 * time.Hour) }

	_, err := svc.Decline(offer.ID, receiver.ID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	var reloaded models.TradeOffer
	require.NoError(t, db.First(&reloaded, offer.ID).Error)
	assert.Equal(t, models.TradeOfferStatusExpired, reloaded.Status)
}

func TestExpireStale_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	l1 := createTestListing(t, db, receiver.ID, 10, models.ListingStatusActive)
	l2 := createTestListing(t, db, receiver.ID, 20, models.ListingStatusActive)
	l3 := createTestListing(t, db, receiver.ID, 30, models.ListingStatusActive)

	stale1 := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, l1.ID, nil, 0)
	stale2 := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, l2.ID, nil, 0)

	created := svc.Now()
	svc.Now = func() time.Time { return created.Add(8 * 24 * time.Hour) }

	fresh := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, l3.ID, nil, 0)

	expired, err := svc.ExpireStale()
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	for _, id := range []uint{stale1.ID, stale2.ID} {
		var offer models.TradeOffer
		require.NoError(t, db.First(&offer, id).Error)
		assert.Equal(t, models.TradeOfferStatusExpired, offer.Status)
	}

	var freshReloaded models.TradeOffer
	require.NoError(t, db.First(&freshReloaded, fresh.ID).Error)
	assert.Equal(t, models.TradeOfferStatusPending, freshReloaded.Status)

	expired, err = svc.ExpireStale()
	require.NoError(t, err)
	assert.Zero(t, expired, "a second sweep must find nothing to do")
}

func TestListForConversation_AppliesLazyExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	sender := createTestUser(t, db, 100, 70)
	receiver := createTestUser(t, db, 100, 70)
	conversation := createTestConversation(t, db, sender.ID, receiver.ID)
	listing := createTestListing(t, db, receiver.ID, 80, models.ListingStatusActive)

	offer := pendingOffer(t, svc, conversation.ID, sender.ID, receiver.ID, listing.ID, nil, 0)

	created := svc.Now()
	svc.Now = func() time.Time { return created.Add(8 * 24 * time.Hour) }

	offers, err := svc.ListForConversation(conversation.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, offer.ID, offers[0].ID)
	assert.Equal(t, models.TradeOfferStatusExpired, offers[0].Status)
}

func TestMarkExpired_StoreFailureIsLogged(t *testing.T) {
	db := newTestDB(t)
	svc := newTradeService(db)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	svc.markExpired(1)
	assert.Contains(t, buf.String(), "failed to expire trade offer 1")
}
