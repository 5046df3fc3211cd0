package route

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vaa "github.com/wormhole-foundation/wormhole/sdk/vaa"

	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/types"
)

// testVAA returns a hex-encoded signed VAA emitted from Arbitrum.
func testVAA(t *testing.T, sequence uint64) string {
	t.Helper()

	v := &vaa.VAA{
		Version:          1,
		GuardianSetIndex: 3,
		Signatures: []*vaa.Signature{
			{Index: 0, Signature: vaa.SignatureData{}},
		},
		Timestamp:        time.Unix(1700000000, 0),
		Nonce:            7,
		Sequence:         sequence,
		ConsistencyLevel: 1,
		EmitterChain:     vaa.ChainIDArbitrum,
		EmitterAddress:   vaa.Address{0xde, 0xad, 0xbe, 0xef},
		Payload:          []byte{0x01, 0x02, 0x03},
	}

	raw, err := v.Marshal()
	require.NoError(t, err)
	return "0x" + hex.EncodeToString(raw)
}

func inProgressStatus() *mayan.TransactionStatus {
	return &mayan.TransactionStatus{
		ID:           "SWIFT_0xaaa",
		SourceChain:  "arbitrum",
		SourceTxHash: "0xaaa",
		DestChain:    "solana",
		ClientStatus: mayan.ClientStatusInProgress,
		Txs: []mayan.StatusTx{
			{TxHash: "0xaaa", Goals: []mayan.Goal{mayan.GoalSend}},
		},
	}
}

func TestStatusToReceiptInProgress(t *testing.T) {
	receipt, err := statusToReceipt(types.Mainnet, inProgressStatus())
	require.NoError(t, err)

	assert.Equal(t, types.StateSourceInitiated, receipt.State)
	assert.Equal(t, types.Arbitrum, receipt.From)
	assert.Equal(t, types.Solana, receipt.To)
	require.Len(t, receipt.OriginTxs, 1)
	assert.Equal(t, "0xaaa", receipt.OriginTxs[0].TxID)
	assert.Empty(t, receipt.DestinationTxs)
	assert.Nil(t, receipt.Attestation)
}

func TestStatusToReceiptDestinationInitiated(t *testing.T) {
	st := inProgressStatus()
	st.Txs = append(st.Txs, mayan.StatusTx{TxHash: "sig111", Goals: []mayan.Goal{mayan.GoalSettle}})
	st.RedeemSignedVAA = testVAA(t, 42)

	receipt, err := statusToReceipt(types.Mainnet, st)
	require.NoError(t, err)

	assert.Equal(t, types.StateDestinationInitiated, receipt.State)
	require.Len(t, receipt.OriginTxs, 1)
	require.Len(t, receipt.DestinationTxs, 1)
	assert.Equal(t, "sig111", receipt.DestinationTxs[0].TxID)
	assert.Equal(t, types.Solana, receipt.DestinationTxs[0].Chain)

	require.NotNil(t, receipt.Attestation)
	assert.Equal(t, uint64(42), receipt.Attestation.Sequence)
	assert.Equal(t, types.Arbitrum, receipt.Attestation.Chain)
	assert.NotEmpty(t, receipt.Attestation.Raw)
}

func TestStatusToReceiptCompleted(t *testing.T) {
	st := inProgressStatus()
	st.ClientStatus = mayan.ClientStatusCompleted
	st.Txs = append(st.Txs, mayan.StatusTx{TxHash: "sig111", Goals: []mayan.Goal{mayan.GoalSettle}})

	receipt, err := statusToReceipt(types.Mainnet, st)
	require.NoError(t, err)

	assert.Equal(t, types.StateDestinationFinalized, receipt.State)
	assert.True(t, receipt.State.Terminal())
	require.Len(t, receipt.DestinationTxs, 1)
}

func TestStatusToReceiptRefunded(t *testing.T) {
	st := inProgressStatus()
	st.ClientStatus = mayan.ClientStatusRefunded
	st.Status = mayan.StatusRefundedOnSolana
	st.RefundTxHash = "refund111"

	receipt, err := statusToReceipt(types.Mainnet, st)
	require.NoError(t, err)

	assert.Equal(t, types.StateRefunded, receipt.State)
	require.Len(t, receipt.RefundTxs, 1)
	assert.Equal(t, "refund111", receipt.RefundTxs[0].TxID)
	assert.Equal(t, types.Solana, receipt.RefundTxs[0].Chain)
	// A refund without an attestation is still a valid terminal receipt.
	assert.Nil(t, receipt.RefundAttestation)
}

func TestStatusToReceiptRefundedOnSource(t *testing.T) {
	st := inProgressStatus()
	st.ClientStatus = mayan.ClientStatusCancelled
	st.Status = mayan.StatusRefundedOnEvm
	st.RefundTxHash = "0xrefund"

	receipt, err := statusToReceipt(types.Mainnet, st)
	require.NoError(t, err)

	assert.Equal(t, types.StateRefunded, receipt.State)
	require.Len(t, receipt.RefundTxs, 1)
	assert.Equal(t, types.Arbitrum, receipt.RefundTxs[0].Chain)
}

func TestStatusToReceiptUnknownStatus(t *testing.T) {
	st := inProgressStatus()
	st.ClientStatus = "HALTED"

	_, err := statusToReceipt(types.Mainnet, st)
	var unknown *types.UnknownStatusError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "HALTED", unknown.Status)
}

func TestStatusToReceiptUndecodableAttestation(t *testing.T) {
	st := inProgressStatus()
	st.TransferSignedVAA = "not-a-vaa"

	receipt, err := statusToReceipt(types.Mainnet, st)
	require.NoError(t, err)
	assert.Nil(t, receipt.Attestation)
	assert.Equal(t, types.StateSourceInitiated, receipt.State)
}

func initiatedReceipt() *types.Receipt {
	return &types.Receipt{
		From:      types.Arbitrum,
		To:        types.Solana,
		State:     types.StateSourceInitiated,
		OriginTxs: []types.TransactionID{{Chain: types.Arbitrum, TxID: "0xaaa"}},
	}
}

// countingStatusServer serves canned status responses in sequence and counts
// the polls it receives.
func countingStatusServer(t *testing.T, responses ...func(w http.ResponseWriter)) (*Route, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		idx := int(n) - 1
		if idx >= len(responses) {
			idx = len(responses) - 1
		}
		responses[idx](w)
	}))
	t.Cleanup(srv.Close)

	r := New(Config{
		Network:         types.Mainnet,
		Logger:          quietLogger(),
		PollInterval:    time.Millisecond,
		ExplorerBaseURL: srv.URL,
	})
	return r, &hits
}

func respondNotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

func respondStatus(t *testing.T, st *mayan.TransactionStatus) func(w http.ResponseWriter) {
	t.Helper()
	body, err := json.Marshal(st)
	require.NoError(t, err)
	return func(w http.ResponseWriter) {
		_, _ = w.Write(body)
	}
}

func TestTrackNotInitiated(t *testing.T) {
	r, hits := countingStatusServer(t, respondNotFound)

	_, err := r.Track(nil, time.Second)
	assert.ErrorIs(t, err, types.ErrNotInitiated)

	_, err = r.Track(&types.Receipt{State: types.StateNone}, time.Second)
	assert.ErrorIs(t, err, types.ErrNotInitiated)

	_, err = r.Track(&types.Receipt{State: types.StateSourceInitiated}, time.Second)
	assert.ErrorIs(t, err, types.ErrNotInitiated)

	// Rejection happens before any network traffic.
	assert.Equal(t, int64(0), hits.Load())
}

func TestTrackTerminalReceiptIsNoOp(t *testing.T) {
	r, hits := countingStatusServer(t, respondNotFound)

	receipt := initiatedReceipt()
	receipt.State = types.StateDestinationFinalized

	session, err := r.Track(receipt, time.Second)
	require.NoError(t, err)
	assert.True(t, session.Done())

	update, err := session.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, update)
	assert.Equal(t, int64(0), hits.Load())
	assert.Same(t, receipt, session.Receipt())
}

func TestTrackPollsThroughNotIndexed(t *testing.T) {
	completed := inProgressStatus()
	completed.ClientStatus = mayan.ClientStatusCompleted
	completed.Txs = append(completed.Txs, mayan.StatusTx{TxHash: "sig111", Goals: []mayan.Goal{mayan.GoalSettle}})

	r, hits := countingStatusServer(t,
		respondNotFound,
		respondNotFound,
		respondStatus(t, completed),
	)

	session, err := r.Track(initiatedReceipt(), 10*time.Second)
	require.NoError(t, err)

	// The two 404 polls are absorbed silently; the first yield is terminal.
	update, err := session.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, update)
	assert.Equal(t, types.StateDestinationFinalized, update.State)
	assert.Equal(t, int64(3), hits.Load())
	assert.True(t, session.Done())

	update, err = session.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, update)
	assert.Equal(t, int64(3), hits.Load())
}

func TestTrackYieldsEachObservation(t *testing.T) {
	inProgress := inProgressStatus()
	completed := inProgressStatus()
	completed.ClientStatus = mayan.ClientStatusCompleted

	r, hits := countingStatusServer(t,
		respondStatus(t, inProgress),
		respondStatus(t, completed),
	)

	session, err := r.Track(initiatedReceipt(), 10*time.Second)
	require.NoError(t, err)

	first, err := session.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, types.StateSourceInitiated, first.State)
	assert.False(t, session.Done())

	second, err := session.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, types.StateDestinationFinalized, second.State)
	assert.True(t, session.Done())
	assert.Equal(t, int64(2), hits.Load())
}

func TestTrackZeroTimeoutPollsOnce(t *testing.T) {
	r, hits := countingStatusServer(t, respondNotFound)

	session, err := r.Track(initiatedReceipt(), 0)
	require.NoError(t, err)

	update, err := session.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, update)
	assert.Equal(t, int64(1), hits.Load())
	assert.True(t, session.Done())

	// The session stays exhausted.
	update, err = session.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, update)
	assert.Equal(t, int64(1), hits.Load())
}

func TestTrackTimeoutKeepsLastReceipt(t *testing.T) {
	r, _ := countingStatusServer(t, respondNotFound)

	receipt := initiatedReceipt()
	session, err := r.Track(receipt, 10*time.Millisecond)
	require.NoError(t, err)

	update, err := session.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, update)
	assert.Same(t, receipt, session.Receipt())
}

func TestTrackServerErrorClosesSession(t *testing.T) {
	r, _ := countingStatusServer(t, func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	session, err := r.Track(initiatedReceipt(), time.Second)
	require.NoError(t, err)

	_, err = session.Next(context.Background())
	require.Error(t, err)
	assert.True(t, session.Done())
}

func TestTrackContextCancellation(t *testing.T) {
	r, _ := countingStatusServer(t, respondNotFound)

	session, err := r.Track(initiatedReceipt(), time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = session.Next(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled),
		"unexpected error: %v", err)
	assert.True(t, session.Done())
}

func TestTrackUnknownStatusFailsSession(t *testing.T) {
	st := inProgressStatus()
	st.ClientStatus = "HALTED"

	r, _ := countingStatusServer(t, respondStatus(t, st))

	session, err := r.Track(initiatedReceipt(), time.Second)
	require.NoError(t, err)

	_, err = session.Next(context.Background())
	var unknown *types.UnknownStatusError
	require.True(t, errors.As(err, &unknown), "unexpected error: %v", err)
	assert.True(t, session.Done())
}

func TestTrackPollsMostRecentOriginTx(t *testing.T) {
	var polledPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polledPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	r := New(Config{
		Network:         types.Mainnet,
		Logger:          quietLogger(),
		PollInterval:    time.Millisecond,
		ExplorerBaseURL: srv.URL,
	})

	receipt := initiatedReceipt()
	receipt.OriginTxs = []types.TransactionID{
		{Chain: types.Arbitrum, TxID: "0xapprove"},
		{Chain: types.Arbitrum, TxID: "0xswap"},
	}

	session, err := r.Track(receipt, 0)
	require.NoError(t, err)
	_, err = session.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("/v3/swap/trx/%s", "0xswap"), polledPath)
}
