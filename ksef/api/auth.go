package api

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Filip850/ksef-fetch-demo/ksef/model"
)

type AuthService interface {
	AuthorisationChallenge(ctx context.Context, nip string) (*model.AuthorisationChallengeResponse, error)
	AuthenticateByToken(ctx context.Context, req *model.InitTokenAuthenticationRequest) (*model.AuthenticationInitResponse, error)
	AuthStatus(ctx context.Context, referenceNumber, token string) (*model.AuthenticationStatus, error)
	RedeemToken(ctx context.Context, token string) (*model.Credential, error)
}

type authService struct {
	client Client
}

func NewAuthService(client Client) AuthService {
	return &authService{client: client}
}

// AuthorisationChallenge asks the platform for a fresh challenge bound to the
// given NIP context.
func (s *authService) AuthorisationChallenge(ctx context.Context, nip string) (*model.AuthorisationChallengeResponse, error) {
	log.Debug("Authorisation challenge")

	res := &model.AuthorisationChallengeResponse{}
	err := s.client.PostJsonNoAuth(ctx, "/auth/challenge", struct {
		ContextIdentifier model.ContextIdentifier `json:"contextIdentifier"`
	}{
		ContextIdentifier: model.ContextIdentifier{
			Type:  model.IdentifierNip,
			Value: nip,
		},
	}, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AuthenticateByToken submits the encrypted KSeF token with its challenge and
// returns the signed authentication reference used for status polling.
func (s *authService) AuthenticateByToken(ctx context.Context, req *model.InitTokenAuthenticationRequest) (*model.AuthenticationInitResponse, error) {
	log.Debug("Authenticate by KSeF token")

	res := &model.AuthenticationInitResponse{}
	err := s.client.PostJsonNoAuth(ctx, "/auth/ksef-token", req, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AuthStatus checks the asynchronous authentication outcome. The token is the
// temporary authentication token from AuthenticateByToken, not an access token.
func (s *authService) AuthStatus(ctx context.Context, referenceNumber, token string) (*model.AuthenticationStatus, error) {
	log.Debugf("Authentication status for reference number: %s", referenceNumber)

	res := &model.AuthenticationStatus{}
	err := s.client.GetJson(ctx, "/auth/"+referenceNumber, token, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RedeemToken exchanges a confirmed authentication for the final
// access/refresh credential pair.
func (s *authService) RedeemToken(ctx context.Context, token string) (*model.Credential, error) {
	log.Debug("Redeem authentication tokens")

	res := &model.Credential{}
	err := s.client.PostJson(ctx, "/auth/token/redeem", token, nil, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}
