package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/envelope"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/protocol/ratchet"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/util/memzero"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/zkp"
)

// sendAttempts bounds transport retries. Retries resend the already-sealed
// envelope; a message key is never re-derived for the same logical message.
const sendAttempts = 3

// timestampWindow is the validity range asserted by the send proof.
const timestampWindow = 5 * time.Minute

// Pipeline orchestrates one peer session: ratchet, AEAD envelope and proof
// engine on the inside, transport and persistence collaborators on the
// outside. It is the only component that touches the transport.
type Pipeline struct {
	selfID  string
	peerID  string
	session *ratchet.Session
	engine  domain.ProofEngine
	trans   domain.Transport
	persist domain.Persistence

	// prekeyMsg rides on the first outbound message so the responder can
	// bootstrap its side of the session, then is cleared.
	prekeyMsg *domain.PreKeyMessage

	// signer, when set, signs delivery attestations so Receive can emit
	// msg_delivery proofs.
	signer func(msg []byte) []byte
}

// New builds a pipeline over an established ratchet session.
func New(
	selfID, peerID string,
	session *ratchet.Session,
	engine domain.ProofEngine,
	trans domain.Transport,
	persist domain.Persistence,
) *Pipeline {
	return &Pipeline{
		selfID:  selfID,
		peerID:  peerID,
		session: session,
		engine:  engine,
		trans:   trans,
		persist: persist,
	}
}

// AttachHandshake schedules the X3DH parameters to ride on the next
// outbound message.
func (p *Pipeline) AttachHandshake(msg domain.PreKeyMessage) {
	p.prekeyMsg = &msg
}

// SetDeliverySigner enables msg_delivery proofs on receive, using the given
// function to sign delivery attestations (typically the identity Ed25519 key).
func (p *Pipeline) SetDeliverySigner(sign func(msg []byte) []byte) {
	p.signer = sign
}

// SessionID identifies this session in the persistence layer.
func (p *Pipeline) SessionID() string { return p.selfID + "." + p.peerID }

// Send encrypts, proves and hands one message to the transport.
//
// Ordering: the ratchet advances and the sealed envelope is built first,
// state is persisted after the seal succeeds and before the network call,
// because forward secrecy requires the chain to advance regardless of
// transport outcome. A transport failure is retried by resending the same
// sealed payload. The returned envelope lets callers retry later as well.
func (p *Pipeline) Send(ctx context.Context, plaintext []byte) (domain.Envelope, domain.Receipt, error) {
	mk, header, err := p.session.RatchetSend()
	if err != nil {
		return domain.Envelope{}, domain.Receipt{}, errors.Wrap(err, "pipeline: ratchet send")
	}

	ad := envelope.HeaderBytes(header)
	nonce, cipher, err := envelope.SealWithAssociatedData(mk.Key, plaintext, ad)
	if err != nil {
		memzero.Zero(mk.Key)
		return domain.Envelope{}, domain.Receipt{}, errors.Wrap(err, "pipeline: seal")
	}

	now := time.Now()
	ptDigest := sha256.Sum256(plaintext)
	ctDigest := sha256.Sum256(cipher)
	proof, err := p.engine.GenerateMessageSendProof(ctx, domain.MessageSendInputs{
		PlaintextDigest: ptDigest[:],
		EncryptionKey:   mk.Key,
		CiphertextHash:  ctDigest[:],
		SenderKey:       []byte(p.selfID),
		RecipientKey:    []byte(p.peerID),
		Timestamp:       now.Unix(),
		MinTimestamp:    now.Add(-timestampWindow).Unix(),
		MaxTimestamp:    now.Add(timestampWindow).Unix(),
	})
	memzero.Zero(mk.Key)
	if err != nil {
		return domain.Envelope{}, domain.Receipt{}, errors.Wrap(err, "pipeline: send proof")
	}

	env := domain.Envelope{
		From:      p.selfID,
		To:        p.peerID,
		Header:    header,
		Nonce:     nonce,
		Cipher:    cipher,
		Proof:     &proof,
		PreKey:    p.prekeyMsg,
		Timestamp: now.Unix(),
	}

	// Commit before the network call: the chain has advanced and must
	// survive a transport failure.
	if err := p.persist.SaveSession(p.SessionID(), p.session.State()); err != nil {
		return domain.Envelope{}, domain.Receipt{}, errors.Wrap(err, "pipeline: persist session")
	}
	if err := p.persist.SaveProof(proof); err != nil {
		return domain.Envelope{}, domain.Receipt{}, errors.Wrap(err, "pipeline: persist proof")
	}
	p.prekeyMsg = nil

	receipt, err := p.deliver(ctx, env)
	if err != nil {
		return env, domain.Receipt{}, err
	}
	return env, receipt, nil
}

// Resend hands an already-sealed envelope back to the transport. The ratchet
// is not touched.
func (p *Pipeline) Resend(ctx context.Context, env domain.Envelope) (domain.Receipt, error) {
	return p.deliver(ctx, env)
}

func (p *Pipeline) deliver(ctx context.Context, env domain.Envelope) (domain.Receipt, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return domain.Receipt{}, errors.Wrap(err, "pipeline: encode envelope")
	}

	var lastErr error
	for attempt := 0; attempt < sendAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Receipt{}, err
		}
		receipt, err := p.trans.SendDirect(ctx, p.peerID, payload)
		if err == nil {
			return receipt, nil
		}
		lastErr = err
		log.WithFields(log.Fields{"peer": p.peerID, "attempt": attempt + 1}).
			WithError(err).Warn("transport send failed")
	}
	return domain.Receipt{}, errors.Wrap(lastErr, "pipeline: transport")
}

// Receive verifies and decrypts one inbound envelope.
//
// The proof is verified first and must bind to the envelope's ciphertext; a
// failed verification rejects the message before any ratchet state mutation,
// so a spoofed message cannot desynchronize the session. The receive is
// staged and committed only after the ciphertext authenticates.
func (p *Pipeline) Receive(ctx context.Context, env domain.Envelope) (domain.DecryptedMessage, error) {
	if env.Proof == nil {
		return domain.DecryptedMessage{}, domain.ErrMessageRejected
	}
	ok, err := p.engine.VerifyProof(*env.Proof)
	if err != nil || !ok {
		return domain.DecryptedMessage{}, domain.ErrMessageRejected
	}
	if env.Proof.CircuitID != domain.CircuitMessageSend ||
		len(env.Proof.PublicSignals) == 0 ||
		env.Proof.PublicSignals[0] != zkp.CiphertextSignal(env.Cipher) {
		return domain.DecryptedMessage{}, domain.ErrMessageRejected
	}

	// Capture the receiving chain key this header is about to retire, if
	// any, so the rotation can be attested after commit.
	oldChainKey := p.retiringChainKey(env.Header)

	staged, err := p.session.StageReceive(env.Header)
	if err != nil {
		memzero.Zero(oldChainKey)
		if errors.Is(err, domain.ErrMalformedHeader) {
			return domain.DecryptedMessage{}, err
		}
		return domain.DecryptedMessage{}, domain.ErrMessageRejected
	}

	ad := envelope.HeaderBytes(env.Header)
	plaintext, err := envelope.OpenWithAssociatedData(staged.Key.Key, env.Nonce, env.Cipher, ad)
	memzero.Zero(staged.Key.Key)
	if err != nil {
		// Committed state stays untouched.
		memzero.Zero(oldChainKey)
		return domain.DecryptedMessage{}, domain.ErrMessageRejected
	}
	staged.Commit()

	if err := p.persist.SaveSession(p.SessionID(), p.session.State()); err != nil {
		memzero.Zero(oldChainKey)
		return domain.DecryptedMessage{}, errors.Wrap(err, "pipeline: persist session")
	}

	p.attest(ctx, env, oldChainKey)

	return domain.DecryptedMessage{
		From:      env.From,
		To:        env.To,
		Plaintext: plaintext,
		Timestamp: env.Timestamp,
	}, nil
}

// retiringChainKey returns a copy of the current receiving chain key when the
// inbound header carries a new remote ratchet key, i.e. when this receive will
// rotate chains. Returns nil otherwise.
func (p *Pipeline) retiringChainKey(header domain.RatchetHeader) []byte {
	if len(header.RatchetPub) != 32 {
		return nil
	}
	st := p.session.State()
	defer memzero.Zero(st.RootKey, st.SendCK, st.RecvCK)

	var remote domain.X25519Public
	copy(remote[:], header.RatchetPub)
	if remote == st.PeerDHPub || len(st.RecvCK) == 0 {
		return nil
	}
	return append([]byte(nil), st.RecvCK...)
}

// attest emits the post-receive proofs: a delivery proof when a signer is
// configured, and a forward-secrecy proof when this receive rotated chains.
// Both are best effort; the message is already accepted.
func (p *Pipeline) attest(ctx context.Context, env domain.Envelope, oldChainKey []byte) {
	if p.signer != nil {
		digest := sha256.Sum256(env.Cipher)
		proof, err := p.engine.GenerateMessageDeliveryProof(ctx, domain.MessageDeliveryInputs{
			SendTimestamp:     env.Timestamp,
			DeliveryTimestamp: time.Now().Unix(),
			DeliverySignature: p.signer(digest[:]),
			RouteWitness:      []byte(env.From + ">" + env.To),
		})
		if err != nil {
			log.WithError(err).Warn("delivery proof generation failed")
		} else if err := p.persist.SaveProof(proof); err != nil {
			log.WithError(err).Warn("delivery proof persist failed")
		}
	}

	if len(oldChainKey) > 0 {
		proof, err := p.engine.GenerateForwardSecrecyProof(ctx, domain.ForwardSecrecyInputs{
			OldChainKey: oldChainKey,
		})
		memzero.Zero(oldChainKey)
		if err != nil {
			log.WithError(err).Warn("forward secrecy proof generation failed")
		} else if err := p.persist.SaveProof(proof); err != nil {
			log.WithError(err).Warn("forward secrecy proof persist failed")
		}
	}
}
