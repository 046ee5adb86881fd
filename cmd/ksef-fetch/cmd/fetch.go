package cmd

import (
	"context"
	"crypto"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/Filip850/ksef-fetch-demo/ksef"
	"github.com/Filip850/ksef-fetch-demo/ksef/api"
	"github.com/Filip850/ksef-fetch-demo/ksef/auth"
	"github.com/Filip850/ksef-fetch-demo/ksef/cipher"
	"github.com/Filip850/ksef-fetch-demo/ksef/export"
	"github.com/Filip850/ksef-fetch-demo/ksef/keys"
	"github.com/Filip850/ksef-fetch-demo/ksef/payload"
	"github.com/Filip850/ksef-fetch-demo/ksef/qr"
	"github.com/Filip850/ksef-fetch-demo/ksef/util"
	"github.com/Filip850/ksef-fetch-demo/png"
)

var (
	fromFlag    string
	toFlag      string
	keyFile     string
	schemeFlag  string
	qrDir       string
	httpTimeout time.Duration

	certSerial  string
	certKeyFile string
	certKeyPass string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch invoices for a date range",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fromFlag, "from", "", "Range start, inclusive (YYYY-MM-DD or RFC3339)")
	fetchCmd.Flags().StringVar(&toFlag, "to", "", "Range end, exclusive (YYYY-MM-DD or RFC3339)")
	fetchCmd.Flags().StringVar(&keyFile, "key-file", "", "Platform public key PEM file")
	fetchCmd.Flags().StringVar(&schemeFlag, "scheme", "rsa-oaep", "Token encryption scheme (rsa-oaep, rsa-pkcs1)")
	fetchCmd.Flags().StringVar(&qrDir, "qr-dir", "", "Write verification QR PNGs into this directory")
	fetchCmd.Flags().DurationVar(&httpTimeout, "http-timeout", 100*time.Second, "HTTP request timeout")
	fetchCmd.Flags().StringVar(&certSerial, "cert-serial", "", "KSeF certificate serial for KOD II links")
	fetchCmd.Flags().StringVar(&certKeyFile, "cert-key-file", "", "Encrypted PKCS#8 certificate key PEM for KOD II links")
	fetchCmd.Flags().StringVar(&certKeyPass, "cert-key-password", "", "Password for --cert-key-file")
	_ = fetchCmd.MarkFlagRequired("from")
	_ = fetchCmd.MarkFlagRequired("to")
	_ = fetchCmd.MarkFlagRequired("key-file")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	var env ksef.Environment
	if err := env.UnmarshalText([]byte(envName)); err != nil {
		return err
	}

	dateFrom, err := parseDate(fromFlag)
	if err != nil {
		return err
	}
	dateTo, err := parseDate(toFlag)
	if err != nil {
		return err
	}

	scheme, err := cipher.ParseScheme(schemeFlag)
	if err != nil {
		return err
	}

	nip := util.GetEnvOrFailed("KSEF_NIP")
	token := util.GetEnvOrFailed("KSEF_TOKEN")

	encryptor, err := cipher.NewTokenEncryptorFromFile(keyFile, scheme)
	if err != nil {
		return err
	}

	client := api.NewWithBaseURL(env.BaseURL(), resty.New().SetTimeout(httpTimeout))
	provider := auth.NewTokenProvider(api.NewAuthService(client), encryptor, nip, token)
	exportAPI := api.NewExportService(client)

	service := export.NewService(
		provider,
		exportAPI,
		cipher.NewContextFactory(encryptor),
		payload.NewProcessor(exportAPI),
	)

	var certKey crypto.Signer
	if certKeyFile != "" {
		certKey, err = keys.LoadEncryptedSignerFromFile(certKeyFile, []byte(certKeyPass))
		if err != nil {
			return err
		}
	}

	records, err := service.FetchInvoices(context.Background(), dateFrom, dateTo)
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %d invoice(s) for %s - %s\n",
		records.Len(), dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"))

	for _, id := range records.IDs() {
		r := records[id]
		fmt.Printf("  %s  %s  %s %s  %s\n",
			r.KsefID,
			r.Document.Number,
			r.Document.TotalDue.StringFixed(2),
			r.Document.Currency,
			r.Document.SellerName,
		)

		if qrDir != "" {
			if err := writeQr(env, r.KsefID, r.Document.SellerNip, r.Document.IssueDate, r.Raw); err != nil {
				return err
			}
		}

		if certKey != nil {
			hash := sha256.Sum256(r.Raw)
			link, err := qr.CertificateLink(env, r.Document.SellerNip, certSerial, hash[:], certKey)
			if err != nil {
				return err
			}
			fmt.Printf("    KOD II: %s\n", link)
		}
	}
	return nil
}

func writeQr(env ksef.Environment, ksefID, sellerNip string, issueDate time.Time, xml []byte) error {
	link, err := qr.VerificationLink(env, sellerNip, issueDate, xml)
	if err != nil {
		return err
	}
	img, err := png.Qr(link)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(qrDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(qrDir, ksefID+".png"), img, 0o644)
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC3339)", v)
	}
	return t, nil
}
