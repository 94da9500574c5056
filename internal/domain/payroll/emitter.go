package payroll

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
)

// Document is a rendered paystub ready for storage.
type Document struct {
	PDF             []byte
	FileName        string
	HallmarkSerial  string
	VerificationURL string
}

// Emitter renders paystub PDFs. Rendering is deterministic: the same record
// always yields byte-identical output, so re-emission after a storage
// failure is safe and the determinism law is testable.
type Emitter struct {
	VerifyBaseURL string
}

func NewEmitter(verifyBaseURL string) *Emitter {
	return &Emitter{VerifyBaseURL: verifyBaseURL}
}

// Emit validates the record and renders its paystub. Validation failures are
// permanent (ErrIncompleteRecord); they must not be retried.
func (e *Emitter) Emit(record PayrollRecord) (Document, error) {
	if err := validateForEmission(record); err != nil {
		return Document{}, err
	}

	verificationURL := VerificationURL(e.VerifyBaseURL, record.HallmarkSerial)

	pdf := gofpdf.New("P", "mm", "A4", "")
	// A fixed creation date keeps output reproducible from the record alone.
	pdf.SetCreationDate(record.CreatedAt.UTC())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(120, 10, "Paystub")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 10, record.HallmarkSerial, "", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Worker: %s", record.WorkerName))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s",
		record.PeriodStart.Format("2006-01-02"), record.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(7)
	jurisdiction := record.WorkState
	if record.WorkCity != "" {
		jurisdiction += " / " + record.WorkCity
	}
	pdf.Cell(0, 7, fmt.Sprintf("Jurisdiction: %s    Filing status: %s", jurisdiction, record.FilingStatus))
	pdf.Ln(10)

	line := func(label string, amount float64) {
		pdf.Cell(110, 6, label)
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Earnings")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	line(fmt.Sprintf("Regular (%.2f h x %.2f)", record.RegularHours, record.HourlyRate), record.RegularPay)
	line(fmt.Sprintf("Overtime (%.2f h x %.2f x 1.5)", record.OvertimeHours, record.HourlyRate), record.OvertimePay)
	pdf.SetFont("Helvetica", "B", 11)
	line("Gross pay", record.GrossPay)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Mandatory deductions")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	line("Federal income tax", record.FederalIncomeTax)
	line("Social Security", record.SocialSecurityTax)
	line("Medicare", record.MedicareTax)
	if record.AdditionalMedicareTax > 0 {
		line("Additional Medicare", record.AdditionalMedicareTax)
	}
	line("State tax", record.StateTax)
	if record.LocalTax > 0 {
		line("Local / occupational tax", record.LocalTax)
	}
	pdf.SetFont("Helvetica", "B", 11)
	line("Total deductions", record.TotalMandatoryDeductions)
	pdf.Ln(4)

	if len(record.Garnishments) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Garnishments")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		for _, applied := range record.Garnishments {
			label := fmt.Sprintf("%s (%s)", applied.Creditor, strings.ReplaceAll(applied.Type, "_", " "))
			line(label, applied.AmountApplied)
		}
		pdf.SetFont("Helvetica", "B", 11)
		line("Total garnishments", record.TotalGarnishments)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 13)
	line("Net pay", record.NetPay)
	pdf.Ln(6)

	qrPNG, err := hallmarkQR(verificationURL)
	if err != nil {
		return Document{}, fmt.Errorf("%w: hallmark QR: %v", ErrIncompleteRecord, err)
	}
	options := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("hallmark-qr", options, bytes.NewReader(qrPNG))
	y := pdf.GetY()
	pdf.ImageOptions("hallmark-qr", 12, y, 28, 28, false, options, 0, "")
	pdf.SetXY(44, y+8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, "Scan to verify this paystub:")
	pdf.SetXY(44, y+13)
	pdf.Cell(0, 5, verificationURL)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render paystub pdf: %w", err)
	}

	return Document{
		PDF:             buf.Bytes(),
		FileName:        record.HallmarkSerial + ".pdf",
		HallmarkSerial:  record.HallmarkSerial,
		VerificationURL: verificationURL,
	}, nil
}

func validateForEmission(record PayrollRecord) error {
	switch {
	case record.ID == "" || record.TenantID == "":
		return fmt.Errorf("%w: missing record identity", ErrIncompleteRecord)
	case record.HallmarkSerial == "":
		return fmt.Errorf("%w: missing hallmark serial", ErrIncompleteRecord)
	case record.WorkerID == "" || record.WorkerName == "":
		return fmt.Errorf("%w: missing worker identity", ErrIncompleteRecord)
	case record.PeriodStart.IsZero() || record.PeriodEnd.IsZero():
		return fmt.Errorf("%w: missing period dates", ErrIncompleteRecord)
	case record.CreatedAt.IsZero():
		return fmt.Errorf("%w: missing creation timestamp", ErrIncompleteRecord)
	case record.TotalGarnishments > 0 && len(record.Garnishments) == 0:
		return fmt.Errorf("%w: garnishment total without breakdown", ErrIncompleteRecord)
	}

	identity := Cents(record.GrossPay) - Cents(record.TotalMandatoryDeductions) - Cents(record.TotalGarnishments)
	if identity != Cents(record.NetPay) {
		return fmt.Errorf("%w: figures do not reconcile", ErrIncompleteRecord)
	}
	return nil
}

func hallmarkQR(payload string) ([]byte, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, 128, 128)
	if err != nil {
		return nil, err
	}
	// The scaled code reports a 16-bit grayscale color model, which gofpdf's
	// PNG reader rejects. Redraw into 8-bit gray before encoding.
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
