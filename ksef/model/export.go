package model

import (
	"fmt"
	"strings"
	"time"
)

// Processing codes returned by the platform for asynchronous operations.
const (
	StatusInProgress = 100
	StatusSuccess    = 200
)

type SubjectType string

type DateType string

const (
	// SubjectTypeSubject2 scopes the export to invoices where the queried
	// NIP is the counter-party (buyer).
	SubjectTypeSubject2 SubjectType = "Subject2"

	DateTypeInvoicing DateType = "Invoicing"
)

type DateRange struct {
	DateType DateType  `json:"dateType"`
	From     time.Time `json:"dateFrom"`
	To       time.Time `json:"dateTo"`
}

type ExportFilters struct {
	SubjectType SubjectType `json:"subjectType"`
	DateRange   DateRange   `json:"dateRange"`
}

// EncryptionInfo carries the RSA-wrapped symmetric key and IV the platform
// will use to encrypt the export package. Both fields are base64 on the wire.
type EncryptionInfo struct {
	EncryptedSymmetricKey []byte `json:"encryptedSymmetricKey"`
	InitializationVector  []byte `json:"initializationVector"`
}

type ExportRequest struct {
	Encryption EncryptionInfo `json:"encryption"`
	Filters    ExportFilters  `json:"filters"`
}

type InitExportResponse struct {
	ReferenceNumber string    `json:"referenceNumber"`
	Timestamp       time.Time `json:"timestamp"`
}

type StatusInfo struct {
	Code        int      `json:"code"`
	Description string   `json:"description"`
	Details     []string `json:"details,omitempty"`
}

func (s StatusInfo) String() string {
	if len(s.Details) == 0 {
		return fmt.Sprintf("%d - %s", s.Code, s.Description)
	}
	return fmt.Sprintf("%d - %s (%s)", s.Code, s.Description, strings.Join(s.Details, "; "))
}

// PackagePart points at one encrypted fragment of the export archive.
type PackagePart struct {
	OrdinalNumber  int       `json:"ordinalNumber"`
	PartName       string    `json:"partName"`
	Method         string    `json:"method"`
	URL            string    `json:"url"`
	PartSize       int64     `json:"partSize"`
	PartHash       string    `json:"partHash,omitempty"`
	ExpirationDate time.Time `json:"partExpirationDate"`
}

// PackageParts describes a completed export package. When IsTruncated is set
// the result hit the record cap and the remainder must be fetched starting at
// LastPermanentStorageDate.
type PackageParts struct {
	InvoiceCount             int           `json:"invoiceCount"`
	IsTruncated              bool          `json:"isTruncated"`
	LastPermanentStorageDate time.Time     `json:"lastPermanentStorageDate,omitempty"`
	Parts                    []PackagePart `json:"parts"`
}

type ExportStatus struct {
	Status       StatusInfo    `json:"status"`
	PackageParts *PackageParts `json:"packageParts,omitempty"`
}

func (s *ExportStatus) InProgress() bool {
	return s.Status.Code == StatusInProgress
}

func (s *ExportStatus) Succeeded() bool {
	return s.Status.Code == StatusSuccess
}
