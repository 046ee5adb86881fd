package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/Filip850/ksef-fetch-demo/ksef/api"
	"github.com/Filip850/ksef-fetch-demo/ksef/model"
	"github.com/Filip850/ksef-fetch-demo/ksef/retry"
)

var logger = log.WithField("component", "ksef.auth")

// TokenProvider utrzymuje aktualną parę tokenów (access/refresh) i odnawia ją
// przezroczyście, gdy wygaśnie. Renewal is serialized: concurrent callers
// observing an expired credential block on one in-flight renewal and re-read
// its result.
type TokenProvider struct {
	api api.AuthService
	enc TokenEncryptor

	nip   string
	token string // pre-shared KSeF token (bootstrap secret)

	clock clockwork.Clock
	poll  retry.Policy

	// o ile wcześniej przed wygaśnięciem uznać tokeny za nieważne
	refreshSkew time.Duration

	mu      sync.RWMutex
	current *model.Credential
}

type Option func(*TokenProvider)

func WithClock(clock clockwork.Clock) Option {
	return func(p *TokenProvider) { p.clock = clock }
}

// WithPollPolicy overrides the auth confirmation polling budget
// (default 1 s interval, 30 attempts).
func WithPollPolicy(policy retry.Policy) Option {
	return func(p *TokenProvider) { p.poll = policy }
}

func WithRefreshSkew(d time.Duration) Option {
	return func(p *TokenProvider) { p.refreshSkew = d }
}

func NewTokenProvider(authAPI api.AuthService, enc TokenEncryptor, nip, token string, opts ...Option) *TokenProvider {
	p := &TokenProvider{
		api:   authAPI,
		enc:   enc,
		nip:   nip,
		token: token,
		clock: clockwork.NewRealClock(),
		poll: retry.Policy{
			Interval:    time.Second,
			MaxAttempts: 30,
		},
		refreshSkew: 30 * time.Second, // bufor bezpieczeństwa
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// GetCredential returns a credential whose both sub-tokens are valid,
// renewing the cached one when needed. Callable concurrently; cached reads
// of a valid credential do not block each other.
func (p *TokenProvider) GetCredential(ctx context.Context) (*model.Credential, error) {
	// szybka ścieżka bez blokady na wyłączność
	if c := p.currentIfValid(); c != nil {
		return c, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// podwójne sprawdzenie po złapaniu blokady
	if c := p.currentIfValidLocked(); c != nil {
		return c, nil
	}

	logger.Debug("Renewing tokens...")
	cred, err := p.renew(ctx)
	if err != nil {
		// poprzedni (wygasły) credential zostaje; kolejne wywołanie ponowi
		logger.Errorf("Token renewal failed: %v", err)
		return nil, err
	}

	p.current = cred
	logger.Debugf("Tokens renewed, access token valid until %s", cred.AccessToken.ValidUntil)
	return cred, nil
}

func (p *TokenProvider) currentIfValid() *model.Credential {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentIfValidLocked()
}

func (p *TokenProvider) currentIfValidLocked() *model.Credential {
	// porównanie w UTC z marginesem
	if p.current.ValidAt(p.clock.Now().UTC(), p.refreshSkew) {
		return p.current
	}
	return nil
}

// renew runs the full challenge/response protocol: challenge, token
// encryption, init, asynchronous confirmation poll, redeem.
func (p *TokenProvider) renew(ctx context.Context) (*model.Credential, error) {
	challenge, err := p.api.AuthorisationChallenge(ctx, p.nip)
	if err != nil {
		return nil, &AuthError{Op: "challenge", Err: err}
	}

	encryptedToken, err := p.enc.EncryptToken(p.token, challenge.Timestamp)
	if err != nil {
		return nil, &AuthError{Op: "token encryption", Err: err}
	}

	initResp, err := p.api.AuthenticateByToken(ctx, &model.InitTokenAuthenticationRequest{
		Challenge: challenge.Challenge,
		ContextIdentifier: model.ContextIdentifier{
			Type:  model.IdentifierNip,
			Value: p.nip,
		},
		EncryptedToken: encryptedToken,
	})
	if err != nil {
		return nil, &AuthError{Op: "authenticate", Err: err}
	}

	tmpToken := initResp.AuthenticationToken.Token

	err = retry.Do(ctx, p.clock, p.poll, func(ctx context.Context) (bool, error) {
		status, err := p.api.AuthStatus(ctx, initResp.ReferenceNumber, tmpToken)
		if err != nil {
			// transient: keep polling within the same budget
			logger.Errorf("Auth status check failed: %v", err)
			return false, nil
		}
		logger.Debugf("Auth status code: %d", status.Status.Code)
		return status.Status.Code == model.StatusSuccess, nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return nil, errors.Wrapf(ErrAuthTimeout, "after %d attempt(s)", p.poll.MaxAttempts)
		}
		return nil, &AuthError{Op: "confirmation poll", Err: err}
	}

	cred, err := p.api.RedeemToken(ctx, tmpToken)
	if err != nil {
		return nil, &AuthError{Op: "redeem", Err: err}
	}
	return cred, nil
}
