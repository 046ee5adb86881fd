// Package payload turns a completed export package into invoice records:
// download the encrypted parts, decrypt them, reassemble the ZIP archive and
// decode every invoice entry.
package payload

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/Filip850/ksef-fetch-demo/ksef/cipher"
	"github.com/Filip850/ksef-fetch-demo/ksef/invoice"
	"github.com/Filip850/ksef-fetch-demo/ksef/model"
)

var logger = logrus.WithField("component", "ksef.payload")

// DecodeError marks a package whose archive or documents could not be
// decoded. The whole page is aborted; a partially decoded page would
// silently lose invoices.
type DecodeError struct {
	Entry string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("cannot decode export package: %v", e.Err)
	}
	return fmt.Sprintf("cannot decode package entry %q: %v", e.Entry, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PartDownloader is the single remote capability the processor needs.
type PartDownloader interface {
	DownloadPart(ctx context.Context, part model.PackagePart) ([]byte, error)
}

// Processor holds no state across calls; Unpack is a pure transform from
// (status, encryption context) to a record set.
type Processor struct {
	downloader PartDownloader
}

func NewProcessor(downloader PartDownloader) *Processor {
	return &Processor{downloader: downloader}
}

// Unpack downloads, decrypts and concatenates all package parts in listed
// order, then decodes every .xml entry of the resulting ZIP into a Record.
// The record id is the entry name up to the final dot.
func (p *Processor) Unpack(ctx context.Context, status *model.ExportStatus, enc *cipher.EncryptionContext) (invoice.Set, error) {
	records := invoice.NewSet()

	if status.PackageParts == nil || len(status.PackageParts.Parts) == 0 {
		return records, nil
	}
	logger.Debugf("Invoices inside the package: %d", status.PackageParts.InvoiceCount)

	archive, err := p.decryptedArchive(ctx, status.PackageParts.Parts, enc)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, &DecodeError{Err: errors.Wrap(err, "open package archive")}
	}

	for _, entry := range zr.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".xml") {
			continue
		}

		data, err := readEntry(entry)
		if err != nil {
			return nil, &DecodeError{Entry: entry.Name, Err: err}
		}

		doc, err := invoice.Decode(data)
		if err != nil {
			return nil, &DecodeError{Entry: entry.Name, Err: err}
		}

		records.Add(invoice.Record{
			KsefID:   ksefIDFromEntryName(entry.Name),
			Document: doc,
			Raw:      data,
		})
	}

	return records, nil
}

// decryptedArchive reassembles the plaintext ZIP. Parts are decrypted
// independently but concatenated in listed order - the archive is one
// contiguous byte stream split across parts.
func (p *Processor) decryptedArchive(ctx context.Context, parts []model.PackagePart, enc *cipher.EncryptionContext) ([]byte, error) {
	var buf bytes.Buffer

	for _, part := range parts {
		raw, err := p.downloader.DownloadPart(ctx, part)
		if err != nil {
			return nil, errors.Wrapf(err, "download part %d", part.OrdinalNumber)
		}

		plain, err := cipher.DecryptAES256CBC(raw, enc.Key, enc.IV)
		if err != nil {
			return nil, &DecodeError{Entry: part.PartName, Err: err}
		}
		buf.Write(plain)
	}

	return buf.Bytes(), nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func ksefIDFromEntryName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
