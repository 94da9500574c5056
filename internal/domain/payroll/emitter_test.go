package payroll

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"
)

func issuableRecord() PayrollRecord {
	return PayrollRecord{
		ID:          "rec-1",
		TenantID:    "tenant-1",
		WorkerID:    "w-1",
		WorkerName:  "Ada Lovelace",
		PeriodID:    "period-1",
		PeriodStart: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),

		HourlyRate:   20,
		WorkState:    "TN",
		FilingStatus: "single",

		RegularHours:  40,
		OvertimeHours: 5,
		RegularPay:    800,
		OvertimePay:   150,
		GrossPay:      950,

		FederalIncomeTax:         74.80,
		SocialSecurityTax:        58.90,
		MedicareTax:              13.78,
		TotalMandatoryDeductions: 147.48,

		Garnishments: []GarnishmentApplied{{
			GarnishmentID: "g-1",
			Type:          GarnishChildSupport,
			Creditor:      "State Disbursement Unit",
			AmountApplied: 150,
		}},
		TotalGarnishments: 150,

		NetPay: 652.52,

		YTDWagesBefore: 9500,
		YTDWagesAfter:  10450,

		HallmarkSerial: HallmarkSerial("tenant-1", "rec-1"),
		Status:         RecordStatusDraft,
		CreatedAt:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestEmitProducesDocument(t *testing.T) {
	emitter := NewEmitter("https://orbit.example.com")
	record := issuableRecord()

	doc, err := emitter.Emit(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.PDF) == 0 {
		t.Fatal("empty PDF output")
	}
	if !bytes.HasPrefix(doc.PDF, []byte("%PDF")) {
		t.Fatal("output does not look like a PDF")
	}
	if doc.FileName != record.HallmarkSerial+".pdf" {
		t.Fatalf("unexpected file name %q", doc.FileName)
	}
	if doc.VerificationURL != "https://orbit.example.com/verify/"+record.HallmarkSerial {
		t.Fatalf("unexpected verification URL %q", doc.VerificationURL)
	}
}

func TestEmitIsDeterministic(t *testing.T) {
	emitter := NewEmitter("https://orbit.example.com")
	record := issuableRecord()

	first, err := emitter.Emit(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := emitter.Emit(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first.PDF, second.PDF) {
		t.Fatal("re-emitting the same record changed the PDF bytes")
	}
}

func TestEmitRejectsIncompleteRecords(t *testing.T) {
	emitter := NewEmitter("https://orbit.example.com")

	cases := map[string]func(*PayrollRecord){
		"missing id":          func(r *PayrollRecord) { r.ID = "" },
		"missing tenant":      func(r *PayrollRecord) { r.TenantID = "" },
		"missing hallmark":    func(r *PayrollRecord) { r.HallmarkSerial = "" },
		"missing worker name": func(r *PayrollRecord) { r.WorkerName = "" },
		"missing period end":  func(r *PayrollRecord) { r.PeriodEnd = time.Time{} },
		"missing created at":  func(r *PayrollRecord) { r.CreatedAt = time.Time{} },
		"total without breakdown": func(r *PayrollRecord) {
			r.Garnishments = nil
		},
		"figures do not reconcile": func(r *PayrollRecord) {
			r.NetPay = 700
		},
	}

	for name, mutate := range cases {
		record := issuableRecord()
		mutate(&record)
		if _, err := emitter.Emit(record); !errors.Is(err, ErrIncompleteRecord) {
			t.Fatalf("%s: expected ErrIncompleteRecord, got %v", name, err)
		}
	}
}

func TestEmitWithoutGarnishments(t *testing.T) {
	emitter := NewEmitter("https://orbit.example.com")
	record := issuableRecord()
	record.Garnishments = nil
	record.TotalGarnishments = 0
	record.NetPay = 802.52

	doc, err := emitter.Emit(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.PDF) == 0 {
		t.Fatal("empty PDF output")
	}
}

func TestHallmarkQREncodesEightBitGray(t *testing.T) {
	data, err := hallmarkQR("https://orbit.example.com/verify/ORB-AAAA-BBBB-CCCC-DDDD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode QR png: %v", err)
	}
	// gofpdf's PNG reader only accepts 8-bit depth; the raw scaled code is
	// 16-bit grayscale and must be redrawn before embedding.
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("expected 8-bit grayscale QR image, got %T", img)
	}
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 128 {
		t.Fatalf("unexpected QR dimensions: %v", img.Bounds())
	}
}
