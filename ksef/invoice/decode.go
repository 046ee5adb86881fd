package invoice

import (
	"time"

	"github.com/beevik/etree"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Document is the structured content of a single FA(3) invoice. Only the
// fields this pipeline consumes are extracted; the rest of the schema is
// ignored.
type Document struct {
	Number     string
	IssueDate  time.Time
	SellerNip  string
	SellerName string
	BuyerNip   string
	BuyerName  string
	Currency   string
	TotalDue   decimal.Decimal
}

// Decode parses raw FA(3) XML into a Document. Malformed XML, a wrong root
// element or an unparseable amount fail the decode.
func Decode(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, "parse invoice xml")
	}

	root := doc.Root()
	if root == nil || root.Tag != "Faktura" {
		return nil, errors.New("not a Faktura document")
	}

	d := &Document{
		Number:     elementText(root, "Fa/P_2"),
		SellerNip:  elementText(root, "Podmiot1/DaneIdentyfikacyjne/NIP"),
		SellerName: elementText(root, "Podmiot1/DaneIdentyfikacyjne/Nazwa"),
		BuyerNip:   elementText(root, "Podmiot2/DaneIdentyfikacyjne/NIP"),
		BuyerName:  elementText(root, "Podmiot2/DaneIdentyfikacyjne/Nazwa"),
		Currency:   elementText(root, "Fa/KodWaluty"),
	}

	if v := elementText(root, "Fa/P_1"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid issue date %q", v)
		}
		d.IssueDate = t
	}

	if v := elementText(root, "Fa/P_15"); v != "" {
		total, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid total due %q", v)
		}
		d.TotalDue = total
	}

	return d, nil
}

func elementText(root *etree.Element, path string) string {
	if e := root.FindElement(path); e != nil {
		return e.Text()
	}
	return ""
}
