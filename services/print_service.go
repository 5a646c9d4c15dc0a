package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// PrintClient hands bills to an external receipt print server.
type PrintClient struct {
	URL    string
	Client *http.Client
}

func NewPrintClient(url string) *PrintClient {
	return &PrintClient{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

type printLine struct {
	Name      string   `json:"name"`
	Variation string   `json:"variation,omitempty"`
	AddOns    []string `json:"add_ons,omitempty"`
	Quantity  int      `json:"quantity"`
	UnitPrice string   `json:"unit_price"`
	LinePrice string   `json:"line_price"`
}

type printJob struct {
	JobID      string            `json:"job_id"`
	BillNumber string            `json:"bill_number"`
	Table      string            `json:"table"`
	Lines      []printLine       `json:"lines"`
	Subtotal   string            `json:"subtotal"`
	Tax        string            `json:"tax"`
	Discount   string            `json:"discount"`
	Total      string            `json:"total"`
	Payments   map[string]string `json:"payments"`
	Copy       int               `json:"copy"`
	PrintedAt  time.Time         `json:"printed_at"`
}

func buildPrintJob(bill *models.Bill) printJob {
	job := printJob{
		JobID:      uuid.New().String(),
		BillNumber: bill.BillNumber,
		Table:      bill.Table.Number,
		Subtotal:   utils.FormatCurrency(bill.Subtotal),
		Tax:        utils.FormatCurrency(bill.Tax),
		Discount:   utils.FormatCurrency(bill.Discount),
		Total:      utils.FormatCurrency(bill.Total),
		Payments:   make(map[string]string, len(bill.PaymentMethods)),
		Copy:       bill.PrintCount,
		PrintedAt:  time.Now(),
	}
	for _, order := range bill.Orders {
		for _, item := range order.OrderItems {
			if item.Status != models.OrderItemStatusActive {
				continue
			}
			line := printLine{
				Name:      item.Menu.Name,
				Variation: item.VariationName,
				Quantity:  item.Quantity,
				UnitPrice: utils.FormatCurrency(item.UnitPrice),
				LinePrice: utils.FormatCurrency(item.LinePrice),
			}
			for _, a := range item.AddOns {
				line.AddOns = append(line.AddOns, a.Name)
			}
			job.Lines = append(job.Lines, line)
		}
	}
	for _, p := range bill.PaymentMethods {
		job.Payments[p.Type] = utils.FormatCurrency(p.Amount)
	}
	return job
}

// PrintBill posts the bill as JSON to the print server.
func (p *PrintClient) PrintBill(bill *models.Bill) error {
	body, err := json.Marshal(buildPrintJob(bill))
	if err != nil {
		return err
	}

	resp, err := p.Client.Post(p.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("print server answered %s", resp.Status)
	}
	utils.InfoLogger.Printf("Bill %s sent to print server (copy %d)", bill.BillNumber, bill.PrintCount)
	return nil
}
