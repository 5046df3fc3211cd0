package route

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	vaa "github.com/wormhole-foundation/wormhole/sdk/vaa"

	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/types"
)

// TrackingSession is a pull iterator over a transfer's state transitions.
// Each Next call polls the aggregator at most once and returns the updated
// receipt when a status payload was observed. It ends when the transfer
// reaches a terminal state or the wall-clock budget runs out.
type TrackingSession struct {
	route   *Route
	receipt *types.Receipt
	txid    string

	deadline time.Time
	polled   bool
	lastPoll time.Time
	done     bool

	now func() time.Time
}

// Track starts a tracking session for a previously initiated transfer. The
// timeout is a soft budget: a poll already in flight when it expires still
// completes, and a zero timeout permits exactly one poll. Receipts already in
// a terminal state yield an immediately exhausted session; receipts with no
// source transaction to poll against fail with ErrNotInitiated before any
// network traffic.
func (r *Route) Track(receipt *types.Receipt, timeout time.Duration) (*TrackingSession, error) {
	if receipt == nil {
		return nil, types.ErrNotInitiated
	}

	if receipt.State.Terminal() {
		return &TrackingSession{route: r, receipt: receipt, done: true, now: time.Now}, nil
	}

	if !receipt.State.Pollable() || len(receipt.OriginTxs) == 0 {
		return nil, types.ErrNotInitiated
	}

	s := &TrackingSession{
		route:   r,
		receipt: receipt,
		txid:    receipt.OriginTxs[len(receipt.OriginTxs)-1].TxID,
		now:     time.Now,
	}
	s.deadline = s.now().Add(timeout)
	return s, nil
}

// Receipt returns the session's latest receipt.
func (s *TrackingSession) Receipt() *types.Receipt { return s.receipt }

// Done reports whether the session yields no further updates.
func (s *TrackingSession) Done() bool { return s.done }

// Next polls until it observes a status payload, the budget runs out, or an
// error occurs. It returns the updated receipt for each observation and
// (nil, nil) when the session is exhausted. A poll that finds the transfer
// not yet indexed consumes budget silently and retries after the poll
// interval.
func (s *TrackingSession) Next(ctx context.Context) (*types.Receipt, error) {
	if s.done {
		return nil, nil
	}

	for {
		if s.polled {
			if !s.now().Before(s.deadline) {
				s.done = true
				return nil, nil
			}
			wait := s.route.pollInterval - s.now().Sub(s.lastPoll)
			if wait > 0 {
				select {
				case <-ctx.Done():
					s.done = true
					return nil, ctx.Err()
				case <-time.After(wait):
				}
			}
		}

		s.polled = true
		s.lastPoll = s.now()

		st, err := s.route.client.TransactionStatus(ctx, s.txid)
		if err != nil {
			s.done = true
			return nil, err
		}
		if st == nil {
			// Not indexed yet. Keep polling until the budget runs out.
			continue
		}

		updated, err := statusToReceipt(s.route.network, st)
		if err != nil {
			s.done = true
			return nil, err
		}
		updated.RawStatus = st.Raw

		s.receipt = updated
		if updated.State.Terminal() {
			s.done = true
		}

		s.route.log.WithField("state", updated.State.String()).Debug("transfer status observed")
		return updated, nil
	}
}

// statusToReceipt translates an aggregator status payload into a framework
// receipt. The translation is pure: it never issues network calls and the
// produced receipt replaces the previous one wholesale.
func statusToReceipt(network types.Network, st *mayan.TransactionStatus) (*types.Receipt, error) {
	sourceChain, err := chainFromName(network, st.SourceChain)
	if err != nil {
		return nil, fmt.Errorf("status names unknown source chain: %w", err)
	}
	destChain, err := chainFromName(network, st.DestChain)
	if err != nil {
		return nil, fmt.Errorf("status names unknown destination chain: %w", err)
	}

	receipt := &types.Receipt{
		From: sourceChain,
		To:   destChain,
	}

	for _, tx := range st.Txs {
		if tx.TxHash == "" {
			continue
		}
		if slices.Contains(tx.Goals, mayan.GoalSettle) {
			receipt.DestinationTxs = append(receipt.DestinationTxs,
				types.TransactionID{Chain: destChain, TxID: tx.TxHash})
			continue
		}
		receipt.OriginTxs = append(receipt.OriginTxs,
			types.TransactionID{Chain: sourceChain, TxID: tx.TxHash})
	}
	if len(receipt.OriginTxs) == 0 && st.SourceTxHash != "" {
		receipt.OriginTxs = []types.TransactionID{{Chain: sourceChain, TxID: st.SourceTxHash}}
	}
	if len(receipt.DestinationTxs) == 0 && st.RedeemTxHash != "" {
		receipt.DestinationTxs = []types.TransactionID{{Chain: destChain, TxID: st.RedeemTxHash}}
	}
	if st.RefundTxHash != "" {
		refundChain := sourceChain
		if st.Status == mayan.StatusRefundedOnSolana {
			refundChain = types.Solana
		}
		receipt.RefundTxs = []types.TransactionID{{Chain: refundChain, TxID: st.RefundTxHash}}
	}

	// Attestations are best effort: an undecodable document is treated as
	// absent rather than failing the whole translation.
	if att := decodeAttestation(firstNonEmptyStatus(st.RedeemSignedVAA, st.SwapSignedVAA, st.TransferSignedVAA)); att != nil {
		receipt.Attestation = att
	}
	if att := decodeAttestation(st.RefundSignedVAA); att != nil {
		receipt.RefundAttestation = att
	}

	switch st.ClientStatus {
	case mayan.ClientStatusCompleted:
		receipt.State = types.StateDestinationFinalized
	case mayan.ClientStatusRefunded, mayan.ClientStatusCancelled:
		receipt.State = types.StateRefunded
	case mayan.ClientStatusInProgress:
		if len(receipt.DestinationTxs) > 0 && receipt.Attestation != nil {
			receipt.State = types.StateDestinationInitiated
		} else {
			receipt.State = types.StateSourceInitiated
		}
	default:
		return nil, &types.UnknownStatusError{Status: st.ClientStatus}
	}

	return receipt, nil
}

// chainFromName resolves an aggregator chain name on the session network,
// falling back to the other network for payloads that mix vocabularies.
func chainFromName(network types.Network, name string) (types.Chain, error) {
	chain, err := mayan.ToChain(network, name)
	if err == nil {
		return chain, nil
	}
	other := types.Testnet
	if network == types.Testnet {
		other = types.Mainnet
	}
	if chain, fallbackErr := mayan.ToChain(other, name); fallbackErr == nil {
		return chain, nil
	}
	return "", err
}

// decodeAttestation parses a signed VAA serialized as hex or base64. Returns
// nil for empty or undecodable input.
func decodeAttestation(encoded string) *types.Attestation {
	if encoded == "" {
		return nil
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil
		}
	}

	parsed, err := vaa.Unmarshal(raw)
	if err != nil {
		return nil
	}

	chain, ok := mayan.ChainFromWormholeID(parsed.EmitterChain)
	if !ok {
		chain = ""
	}

	return &types.Attestation{
		Emitter:  parsed.EmitterAddress.String(),
		Sequence: parsed.Sequence,
		Chain:    chain,
		Raw:      raw,
	}
}

func firstNonEmptyStatus(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
