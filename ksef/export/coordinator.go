// Package export coordinates asynchronous invoice export jobs: submission,
// status polling and continuation of truncated result sets.
package export

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/Filip850/ksef-fetch-demo/ksef/api"
	"github.com/Filip850/ksef-fetch-demo/ksef/cipher"
	"github.com/Filip850/ksef-fetch-demo/ksef/invoice"
	"github.com/Filip850/ksef-fetch-demo/ksef/model"
	"github.com/Filip850/ksef-fetch-demo/ksef/retry"
)

var logger = log.WithField("component", "ksef.export")

// CredentialSource provides a valid access credential. Implemented by
// auth.TokenProvider.
type CredentialSource interface {
	GetCredential(ctx context.Context) (*model.Credential, error)
}

// Unpacker turns a completed export status into invoice records.
// Implemented by payload.Processor.
type Unpacker interface {
	Unpack(ctx context.Context, status *model.ExportStatus, enc *cipher.EncryptionContext) (invoice.Set, error)
}

type Service struct {
	tokens     CredentialSource
	api        api.ExportService
	newContext cipher.ContextFactory
	unpacker   Unpacker

	clock clockwork.Clock
	poll  retry.Policy
}

type Option func(*Service)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithPollPolicy overrides the export status polling budget
// (default 10 s interval, 30 minute wall clock).
func WithPollPolicy(policy retry.Policy) Option {
	return func(s *Service) { s.poll = policy }
}

func NewService(tokens CredentialSource, exportAPI api.ExportService, newContext cipher.ContextFactory, unpacker Unpacker, opts ...Option) *Service {
	s := &Service{
		tokens:     tokens,
		api:        exportAPI,
		newContext: newContext,
		unpacker:   unpacker,
		clock:      clockwork.NewRealClock(),
		poll: retry.Policy{
			Interval:   10 * time.Second,
			MaxElapsed: 30 * time.Minute,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type page struct {
	status *model.ExportStatus
	enc    *cipher.EncryptionContext
}

// FetchInvoices retrieves all invoices with invoicing date in
// [dateFrom, dateTo), as the counter-party. Truncated result sets are
// continued from their checkpoint date; records from all pages are merged
// into one set deduplicated by KSeF id. All-or-nothing: any failure returns
// no partial result.
func (s *Service) FetchInvoices(ctx context.Context, dateFrom, dateTo time.Time) (invoice.Set, error) {
	pages, err := s.collectPages(ctx, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	records := invoice.NewSet()

	// Deepest page first, mirroring the recursive merge order of the
	// continuation: a page's own payload lands after its continuation's.
	for i := len(pages) - 1; i >= 0; i-- {
		pageRecords, err := s.unpacker.Unpack(ctx, pages[i].status, pages[i].enc)
		if err != nil {
			return nil, err
		}
		records.Merge(pageRecords)
	}

	logger.Debugf("Fetched %d invoice(s) across %d page(s)", records.Len(), len(pages))
	return records, nil
}

// collectPages submits and polls one export per page, advancing dateFrom to
// the truncation checkpoint until a page arrives whole. The 10k record cap
// makes truncated pages routine on wide ranges.
func (s *Service) collectPages(ctx context.Context, dateFrom, dateTo time.Time) ([]page, error) {
	var pages []page
	from := dateFrom

	for {
		status, enc, err := s.fetchPage(ctx, from, dateTo)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page{status: status, enc: enc})

		pp := status.PackageParts
		if pp == nil || !pp.IsTruncated {
			return pages, nil
		}

		checkpoint := pp.LastPermanentStorageDate
		if !checkpoint.After(from) {
			// platform is not trusted to terminate the continuation
			return nil, errors.Errorf("truncation checkpoint %s does not advance past %s", checkpoint, from)
		}
		logger.Debugf("Package truncated, continuing from %s", checkpoint)
		from = checkpoint
	}
}

func (s *Service) fetchPage(ctx context.Context, dateFrom, dateTo time.Time) (*model.ExportStatus, *cipher.EncryptionContext, error) {
	enc, err := s.newContext()
	if err != nil {
		return nil, nil, errors.Wrap(err, "new encryption context")
	}

	cred, err := s.tokens.GetCredential(ctx)
	if err != nil {
		return nil, nil, err
	}

	initResp, err := s.api.InitExport(ctx, &model.ExportRequest{
		Encryption: model.EncryptionInfo{
			EncryptedSymmetricKey: enc.EncryptedKey,
			InitializationVector:  enc.IV,
		},
		Filters: model.ExportFilters{
			SubjectType: model.SubjectTypeSubject2,
			DateRange: model.DateRange{
				DateType: model.DateTypeInvoicing,
				From:     dateFrom,
				To:       dateTo,
			},
		},
	}, cred.AccessToken.Token)
	if err != nil {
		return nil, nil, errors.Wrap(err, "init export")
	}

	status, err := s.pollUntilPackageReady(ctx, initResp.ReferenceNumber)
	if err != nil {
		return nil, nil, err
	}
	return status, enc, nil
}

// pollUntilPackageReady polls the job status until it leaves the in-progress
// state. The wall-clock budget runs from the first check; exceeding it is
// reported as ErrExportTimeout, any terminal non-success as ExportError.
func (s *Service) pollUntilPackageReady(ctx context.Context, referenceNumber string) (*model.ExportStatus, error) {
	logger.Debug("Package polling starts...")

	var last *model.ExportStatus
	err := retry.Do(ctx, s.clock, s.poll, func(ctx context.Context) (bool, error) {
		cred, err := s.tokens.GetCredential(ctx)
		if err != nil {
			return false, err
		}

		status, err := s.api.ExportStatus(ctx, referenceNumber, cred.AccessToken.Token)
		if err != nil {
			return false, errors.Wrap(err, "check export status")
		}
		logger.Debugf("Export status code: %d", status.Status.Code)

		if status.InProgress() {
			return false, nil
		}
		if !status.Succeeded() {
			return false, &ExportError{Status: status}
		}
		last = status
		return true, nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return nil, errors.Wrapf(ErrExportTimeout, "reference number %s", referenceNumber)
		}
		return nil, err
	}
	return last, nil
}
