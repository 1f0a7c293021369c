package realex

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kevin07696/realex-gateway/internal/domain"
	pkgerrors "github.com/kevin07696/realex-gateway/pkg/errors"
	"github.com/kevin07696/realex-gateway/test/mocks"
)

func newTestClient(t *testing.T, transport *mocks.MockTransport, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithTimestampFunc(fixedTimestamp)}, opts...)
	client, err := NewClient(testMerchant(), transport, opts...)
	require.NoError(t, err)
	return client
}

func sentDocument(t *testing.T, call mocks.TransportCall) *Element {
	t.Helper()
	root, err := ParseDocument(call.Body)
	require.NoError(t, err)
	return root
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	transport := mocks.NewMockTransport()

	_, err := NewClient(domain.MerchantContext{Password: testSecret}, transport)
	assert.ErrorIs(t, err, domain.ErrMerchantIDRequired)

	_, err = NewClient(domain.MerchantContext{MerchantID: testMerchantID}, transport)
	assert.ErrorIs(t, err, domain.ErrSecretRequired)

	_, err = NewClient(testMerchant(), nil)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestClient_Authorize_SanitizedOrderID(t *testing.T) {
	transport := mocks.NewMockTransport(successfulPurchaseResponse)
	client := newTestClient(t, transport)

	outcome, err := client.Authorize(context.Background(), domain.NewMoney(10000, "EUR"), testCard(),
		domain.PaymentOptions{OrderID: "abc!@#123"})
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.True(t, outcome.Test)
	assert.Equal(t, "authcode received", outcome.Authorization)
	assert.Equal(t, "M", outcome.CVVResult)
	assert.Equal(t, pkgerrors.CategorySuccessful, outcome.Category)
	assert.Equal(t, MessageSuccessful, outcome.Message)
	assert.Nil(t, outcome.ThreeDSecure)

	require.Equal(t, 1, transport.CallCount())
	call := transport.LastCall()
	assert.Equal(t, domain.EndpointDefault, call.Endpoint)

	doc := sentDocument(t, call)
	assert.Equal(t, "abc123", doc.Value("orderid"))
	assert.Equal(t, "0", doc.Value("autosettle@flag"))
	assert.Equal(t,
		ComputeSignature(testSecret, testTimestamp, testMerchantID, "abc123", "10000", "EUR", "4263971921001307"),
		doc.Value("sha1hash"),
	)
}

func TestClient_Purchase_Declined(t *testing.T) {
	transport := mocks.NewMockTransport(unsuccessfulPurchaseResponse)
	client := newTestClient(t, transport)

	outcome, err := client.Purchase(context.Background(), testMoney(), testCard(), domain.PaymentOptions{OrderID: "1"})
	require.NoError(t, err, "declines are outcomes")

	assert.False(t, outcome.Success)
	assert.True(t, outcome.Test)
	assert.Equal(t, pkgerrors.CategoryDeclined, outcome.Category)
	assert.Equal(t, MessageDeclined, outcome.Message)
	assert.Equal(t, unsuccessfulPurchaseResponse, outcome.Body)
}

func TestClient_Purchase_EnrolledStopsBeforePayment(t *testing.T) {
	transport := mocks.NewMockTransport(enrolledResponse)
	client := newTestClient(t, transport)

	outcome, err := client.Purchase(context.Background(), testMoney(), testCard(),
		domain.PaymentOptions{OrderID: "1", ThreeDSecure: true})
	require.NoError(t, err)

	require.Equal(t, 1, transport.CallCount(), "the purchase document is never sent")
	call := transport.LastCall()
	assert.Equal(t, domain.EndpointThreeDSecure, call.Endpoint)
	assert.Equal(t, "3ds-verifyenrolled", sentDocument(t, call).Attr("type"))

	require.NotNil(t, outcome.ThreeDSecure)
	assert.Equal(t, domain.ThreeDSecureEnrolled, outcome.ThreeDSecure.State)
	assert.True(t, outcome.ThreeDSecure.Enrolled)
	assert.Equal(t, "http://www.acs.com", outcome.ThreeDSecure.ACSURL)
	assert.Equal(t, "7ba3b1e6e6b542489b73243aac050777", outcome.ThreeDSecure.XID)
	assert.Contains(t, outcome.ThreeDSecure.PaReq, "eJxVUttygkAM")
}

func TestClient_Purchase_NotEnrolledProceeds(t *testing.T) {
	transport := mocks.NewMockTransport(notEnrolledResponse, successfulPurchaseResponse)
	client := newTestClient(t, transport)

	outcome, err := client.Purchase(context.Background(), testMoney(), testCard(),
		domain.PaymentOptions{OrderID: "1", ThreeDSecure: true})
	require.NoError(t, err)

	require.Equal(t, 2, transport.CallCount())
	assert.Equal(t, domain.EndpointThreeDSecure, transport.Calls[0].Endpoint)
	assert.Equal(t, domain.EndpointDefault, transport.Calls[1].Endpoint)

	doc := sentDocument(t, transport.Calls[1])
	assert.Equal(t, "auth", doc.Attr("type"))
	assert.Nil(t, doc.Child("mpi"))
	assert.True(t, outcome.Success)
}

func TestClient_Purchase_PasswordIncorrectAborts(t *testing.T) {
	transport := mocks.NewMockTransport(successfulVerifySignatureResponse)
	client := newTestClient(t, transport)

	outcome, err := client.Purchase(context.Background(), testMoney(), testCard(), domain.PaymentOptions{
		OrderID:          "1",
		ThreeDSecureAuth: &domain.ThreeDSecureAuth{PaRes: "xxxx"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, transport.CallCount(), "the purchase document is never sent")
	doc := sentDocument(t, transport.LastCall())
	assert.Equal(t, "3ds-verifysig", doc.Attr("type"))
	assert.Equal(t, "xxxx", doc.Value("pares"))

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "password entered incorrectly")
	assert.Equal(t, pkgerrors.CategoryThreeDSecureAbort, outcome.Category)
	assert.Equal(t, domain.ThreeDSecurePasswordIncorrect, outcome.ThreeDSecure.State)
}

func TestClient_Purchase_LiableAttachesMPI(t *testing.T) {
	transport := mocks.NewMockTransport(verifySignatureResponse("00", "Y"), successfulPurchaseResponse)
	client := newTestClient(t, transport)

	outcome, err := client.Purchase(context.Background(), testMoney(), testCard(), domain.PaymentOptions{
		OrderID:          "1",
		ThreeDSecureAuth: &domain.ThreeDSecureAuth{PaRes: "xxxx"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, transport.CallCount())

	doc := sentDocument(t, transport.Calls[1])
	assert.Equal(t, "1", doc.Value("autosettle@flag"))
	assert.Equal(t, "AAACAWQWaRKIFwQlVBZpAAAAAAA=", doc.Value("mpi/cavv"))
	assert.Equal(t, "l2ncCuvKNtCtRY3OoC/ztHS8ZvI=", doc.Value("mpi/xid"))
	assert.Equal(t, "5", doc.Value("mpi/eci"))

	assert.True(t, outcome.Success)
	require.NotNil(t, outcome.ThreeDSecure)
	assert.Equal(t, domain.ThreeDSecureComplete, outcome.ThreeDSecure.State)
	assert.Equal(t, "Y", outcome.ThreeDSecure.Session.Status)
}

func TestClient_Authorize_ChecksEnrollmentOnly(t *testing.T) {
	t.Run("enrollment check runs before anything else", func(t *testing.T) {
		transport := mocks.NewMockTransport(enrolledResponse)
		client := newTestClient(t, transport)

		outcome, err := client.Authorize(context.Background(), testMoney(), testCard(), domain.PaymentOptions{
			OrderID:          "1",
			ThreeDSecure:     true,
			ThreeDSecureAuth: &domain.ThreeDSecureAuth{PaRes: "xxxx"},
		})
		require.NoError(t, err)

		require.Equal(t, 1, transport.CallCount())
		assert.Equal(t, domain.EndpointThreeDSecure, transport.Calls[0].Endpoint)
		assert.Equal(t, "3ds-verifyenrolled", sentDocument(t, transport.Calls[0]).Attr("type"))
		require.NotNil(t, outcome.ThreeDSecure)
		assert.Equal(t, domain.ThreeDSecureEnrolled, outcome.ThreeDSecure.State)
	})

	t.Run("completed authentication is not verified", func(t *testing.T) {
		transport := mocks.NewMockTransport(successfulPurchaseResponse)
		client := newTestClient(t, transport)

		outcome, err := client.Authorize(context.Background(), testMoney(), testCard(), domain.PaymentOptions{
			OrderID:          "1",
			ThreeDSecureAuth: &domain.ThreeDSecureAuth{PaRes: "xxxx"},
		})
		require.NoError(t, err)

		require.Equal(t, 1, transport.CallCount())
		doc := sentDocument(t, transport.LastCall())
		assert.Equal(t, "auth", doc.Attr("type"))
		assert.Nil(t, doc.Child("mpi"))
		assert.True(t, outcome.Success)
	})
}

func TestClient_Credit_RefundHash(t *testing.T) {
	tests := []struct {
		name         string
		rebateSecret string
		wantHash     string
	}{
		{name: "with rebate secret", rebateSecret: testRebateSecret, wantHash: "f94ff2a7c125a8ad87e5683114ba1e384889240e"},
		{name: "without rebate secret", rebateSecret: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merchant, err := domain.NewMerchantContext(testMerchantID, testSecret, testAccount, tt.rebateSecret)
			require.NoError(t, err)
			transport := mocks.NewMockTransport(successfulCreditResponse)
			client, err := NewClient(merchant, transport, WithTimestampFunc(fixedTimestamp))
			require.NoError(t, err)

			outcome, err := client.Credit(context.Background(), testMoney(), "1234",
				domain.ReferenceOptions{OrderID: "1234", PasRef: "1234"})
			require.NoError(t, err)
			assert.True(t, outcome.Success)

			doc := sentDocument(t, transport.LastCall())
			if tt.wantHash == "" {
				assert.Nil(t, doc.Child("refundhash"))
				return
			}
			assert.Equal(t, tt.wantHash, doc.Value("refundhash"))
		})
	}
}

func TestClient_Credit_OverRebateLimit(t *testing.T) {
	transport := mocks.NewMockTransport(unsuccessfulCreditResponse)
	client := newTestClient(t, transport)

	outcome, err := client.Credit(context.Background(), testMoney(), "1234", domain.ReferenceOptions{OrderID: "1", PasRef: "1234"})
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.True(t, outcome.Test)
	assert.Equal(t, "[ test system ] You may only rebate up to 115% of the original amount.", outcome.Message)
}

func TestClient_EndpointSelection(t *testing.T) {
	card := testCard()
	money := testMoney()
	stored := domain.StoredCardOptions{OrderID: "1", PaymentMethod: "visa01", PayerRef: "1"}

	tests := []struct {
		name     string
		call     func(c *Client) (*domain.Outcome, error)
		endpoint domain.Endpoint
		docType  string
	}{
		{"capture", func(c *Client) (*domain.Outcome, error) {
			return c.Capture(context.Background(), money, "1234", domain.ReferenceOptions{OrderID: "1", PasRef: "1234"})
		}, domain.EndpointDefault, "settle"},
		{"void", func(c *Client) (*domain.Outcome, error) {
			return c.Void(context.Background(), "1234", domain.ReferenceOptions{OrderID: "1", PasRef: "1234"})
		}, domain.EndpointDefault, "void"},
		{"store card", func(c *Client) (*domain.Outcome, error) {
			return c.StoreCard(context.Background(), card, stored)
		}, domain.EndpointRecurring, "card-new"},
		{"unstore card", func(c *Client) (*domain.Outcome, error) {
			return c.UnstoreCard(context.Background(), card, stored)
		}, domain.EndpointRecurring, "card-cancel-card"},
		{"store payer", func(c *Client) (*domain.Outcome, error) {
			return c.StorePayer(context.Background(), domain.PayerOptions{OrderID: "1", Payer: domain.Payer{Ref: "1"}})
		}, domain.EndpointRecurring, "payer-new"},
		{"recurring", func(c *Client) (*domain.Outcome, error) {
			return c.Recurring(context.Background(), money, card, domain.RecurringOptions{OrderID: "1", PayerRef: "1", PaymentMethod: "visa01"})
		}, domain.EndpointRecurring, "receipt-in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mocks.NewMockTransport(successfulRecurringResponse)
			outcome, err := tt.call(newTestClient(t, transport))
			require.NoError(t, err)
			assert.True(t, outcome.Success)

			call := transport.LastCall()
			assert.Equal(t, tt.endpoint, call.Endpoint)
			assert.Equal(t, tt.docType, sentDocument(t, call).Attr("type"))
		})
	}
}

func TestClient_StoreCard_Declined(t *testing.T) {
	transport := mocks.NewMockTransport(unsuccessfulCardStoreResponse)
	client := newTestClient(t, transport)

	outcome, err := client.StoreCard(context.Background(), testCard(),
		domain.StoredCardOptions{OrderID: "1", PaymentMethod: "cardref01", PayerRef: "1"})
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, "This Card Ref [cardref01] has already been used", outcome.Message)
}

func TestClient_MissingOptionNeverReachesTransport(t *testing.T) {
	transport := mocks.NewMockTransport()
	client := newTestClient(t, transport)

	_, err := client.Purchase(context.Background(), testMoney(), testCard(), domain.PaymentOptions{ThreeDSecure: true})
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
	assert.Equal(t, domain.ErrorCodeConfigMissingOption, domain.GetErrorCode(err))

	_, err = client.Capture(context.Background(), testMoney(), "1234", domain.ReferenceOptions{OrderID: "1"})
	assert.True(t, domain.IsConfigurationError(err))

	assert.Equal(t, 0, transport.CallCount())
}

func TestClient_TransportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "plain error is wrapped", err: errors.New("connection refused")},
		{name: "transport error is kept", err: domain.NewTransportError("default", errors.New("timeout"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mocks.NewMockTransport()
			transport.QueueError(tt.err)
			client := newTestClient(t, transport)

			outcome, err := client.Void(context.Background(), "1234", domain.ReferenceOptions{OrderID: "1", PasRef: "1234"})
			assert.Nil(t, outcome)
			require.Error(t, err)
			assert.True(t, domain.IsTransportError(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClient_UndecodableResponseIsDecline(t *testing.T) {
	transport := mocks.NewMockTransport("<html>Bad Gateway</html>")
	client := newTestClient(t, transport)

	outcome, err := client.Purchase(context.Background(), testMoney(), testCard(), domain.PaymentOptions{OrderID: "1"})
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, pkgerrors.CategoryDeclined, outcome.Category)
	assert.Empty(t, outcome.Fields)
}

func TestClient_LogsNeverContainCardNumber(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	transport := mocks.NewMockTransport(successfulPurchaseResponse)
	client := newTestClient(t, transport, WithLogger(zap.New(core)))

	_, err := client.Purchase(context.Background(), testMoney(), testCard(), domain.PaymentOptions{OrderID: "order-9"})
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		for key, value := range entry.ContextMap() {
			assert.NotContains(t, key, "card_number")
			if s, ok := value.(string); ok {
				assert.NotContains(t, s, testCard().Number)
				assert.NotContains(t, s, testSecret)
			}
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("Received gateway response").FilterField(zap.String("order_id", "order-9")).Len())
}

func TestClient_ConcurrentUse(t *testing.T) {
	transport := mocks.NewMockTransport()
	transport.PostFunc = func(ctx context.Context, endpoint domain.Endpoint, body []byte) ([]byte, error) {
		return []byte(successfulPurchaseResponse), nil
	}
	client := newTestClient(t, transport)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := client.Purchase(context.Background(), testMoney(), testCard(), domain.PaymentOptions{OrderID: domain.NewOrderID()})
			assert.NoError(t, err)
			assert.True(t, outcome.Success)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, transport.CallCount())
}
