package api

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Filip850/ksef-fetch-demo/ksef/model"
)

type ExportService interface {
	InitExport(ctx context.Context, req *model.ExportRequest, token string) (*model.InitExportResponse, error)
	ExportStatus(ctx context.Context, referenceNumber, token string) (*model.ExportStatus, error)
	DownloadPart(ctx context.Context, part model.PackagePart) ([]byte, error)
}

type exportService struct {
	client Client
}

func NewExportService(client Client) ExportService {
	return &exportService{client: client}
}

// InitExport submits an asynchronous invoice export job and returns its
// reference number.
func (s *exportService) InitExport(ctx context.Context, req *model.ExportRequest, token string) (*model.InitExportResponse, error) {
	log.Debugf("Init invoice export %s - %s",
		req.Filters.DateRange.From.Format("2006-01-02"),
		req.Filters.DateRange.To.Format("2006-01-02"))

	res := &model.InitExportResponse{}
	err := s.client.PostJson(ctx, "/invoices/exports", token, req, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ExportStatus checks the state of a previously submitted export job.
func (s *exportService) ExportStatus(ctx context.Context, referenceNumber, token string) (*model.ExportStatus, error) {
	log.Debugf("Export status for reference number: %s", referenceNumber)

	res := &model.ExportStatus{}
	err := s.client.GetJson(ctx, "/invoices/exports/"+referenceNumber, token, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DownloadPart fetches the raw encrypted bytes of one package part from its
// pre-signed URL.
func (s *exportService) DownloadPart(ctx context.Context, part model.PackagePart) ([]byte, error) {
	log.Debugf("Downloading package part %d: %s", part.OrdinalNumber, part.PartName)
	return s.client.GetBytes(ctx, part.URL)
}
