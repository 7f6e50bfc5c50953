package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"

	"go-inventory-ledger/internal/database"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

// maxToolRounds bounds how many tool call round trips one question may take.
const maxToolRounds = 5

var ErrNoAnswer = errors.New("model returned no candidates")

// Inventory is the slice of the ledger the assistant may use. Every change
// goes through the ledger so role checks and activities still apply.
type Inventory interface {
	Snapshot() ledger.State
	Product(id string) (models.Product, error)
	AddProduct(ctx context.Context, in ledger.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
}

// SalesReporter answers revenue questions over a date range.
type SalesReporter interface {
	SalesReport(ctx context.Context, start, end time.Time) (*database.SalesReportResult, error)
}

type Agent struct {
	apiKey  string
	model   string
	inv     Inventory
	reports SalesReporter
	now     func() time.Time
}

func NewAgent(apiKey, model string, inv Inventory, reports SalesReporter) *Agent {
	return &Agent{apiKey: apiKey, model: model, inv: inv, reports: reports, now: time.Now}
}

func (a *Agent) systemPrompt(userMessage string) string {
	today := a.now().Format("2006-01-02")

	return fmt.Sprintf(`SYSTEM: Today is %s. You are an Inventory Assistant for a store's stock ledger.

	RULES:
	1. UPDATE: If a user asks to update a product by NAME (e.g. "Update Banana price"), you must NOT ask them for the ID. Instead:
	   - Call 'check_inventory' to find the ID.
	   - Call 'update_product_price' using that ID.

	2. READ: If a user asks for PRICE, STOCK, SUPPLIER or DETAILS of a product:
	   - You MUST call 'check_inventory' to get the full list.
	   - Then read the result to find the specific item and answer the user.

	3. SALES: If the user asks for sales/revenue, use 'get_sales_report'.

	4. REORDER: If the user asks what is running low or what to reorder, use 'low_stock_report'.

	USER: %s`, today, userMessage)
}

func tools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Price, Stock, Minimum stock or Supplier.",
				},
				{
					Name:        "update_product_price",
					Description: "Update the price of a specific product using its ID",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"product_id": {Type: genai.TypeString, Description: "ID of the product"},
							"new_price":  {Type: genai.TypeNumber, Description: "New price"},
						},
						Required: []string{"product_id", "new_price"},
					},
				},
				{
					Name:        "create_product",
					Description: "Add a new product to the inventory",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":           {Type: genai.TypeString, Description: "Name of the product"},
							"price":          {Type: genai.TypeNumber, Description: "Price of the product"},
							"category":       {Type: genai.TypeString, Description: "Category (Electronics, Furniture, etc)"},
							"stock_quantity": {Type: genai.TypeInteger, Description: "Initial stock count"},
							"min_stock":      {Type: genai.TypeInteger, Description: "Reorder threshold"},
							"supplier":       {Type: genai.TypeString, Description: "Supplier name"},
						},
						Required: []string{"name", "price", "category", "stock_quantity"},
					},
				},
				{
					Name:        "get_sales_report",
					Description: "Get total sales revenue, order count and units sold for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "low_stock_report",
					Description: "List products at or below their minimum stock level.",
				},
			},
		},
	}
}

// Run answers one question, executing the tool calls the model asks for.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = tools()
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.systemPrompt(userMessage)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls, err := functionCalls(resp)
		if err != nil {
			return "", err
		}
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			logging.WithContext(ctx).WithField("tool", call.Name).Info("assistant tool call")
			parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: a.executeTool(ctx, call)})
		}
		if resp, err = session.SendMessage(ctx, parts...); err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

func functionCalls(resp *genai.GenerateContentResponse) ([]genai.FunctionCall, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoAnswer
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls, nil
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return strings.TrimSpace(string(txt))
			}
		}
	}
	return "I completed the action."
}

// --- TOOLS ---

type simpleProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
	Price    string `json:"price"`
	Supplier string `json:"supplier"`
}

func toSimple(p models.Product) simpleProduct {
	return simpleProduct{
		ID: p.ID, Name: p.Name, Category: p.Category, Stock: p.Stock,
		MinStock: p.MinStock, Price: p.Price.StringFixed(2), Supplier: p.Supplier,
	}
}

// executeTool runs one tool call and returns the payload sent back to the
// model. Failures are reported to the model, not to the caller.
func (a *Agent) executeTool(ctx context.Context, call genai.FunctionCall) map[string]any {
	switch call.Name {
	case "check_inventory":
		list := []simpleProduct{}
		for _, p := range a.inv.Snapshot().Products {
			list = append(list, toSimple(p))
		}
		return map[string]any{"inventory": jsonString(list)}

	case "low_stock_report":
		list := []simpleProduct{}
		for _, p := range a.inv.Snapshot().Products {
			if p.LowStock() {
				list = append(list, toSimple(p))
			}
		}
		return map[string]any{"low_stock": jsonString(list), "count": len(list)}

	case "update_product_price":
		return a.updatePrice(ctx, call.Args)

	case "create_product":
		return a.createProduct(ctx, call.Args)

	case "get_sales_report":
		return a.salesReport(ctx, call.Args)
	}
	return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
}

// Responses are converted to protobuf structs, which only take plain values,
// so records travel as JSON text.
func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func toolError(err error) map[string]any {
	return map[string]any{"status": "failed", "error": err.Error()}
}

func (a *Agent) updatePrice(ctx context.Context, args map[string]any) map[string]any {
	id := argString(args, "product_id")
	price, ok := argDecimal(args, "new_price")
	if id == "" || !ok {
		return toolError(errors.New("product_id and new_price are required"))
	}

	product, err := a.inv.Product(id)
	if err != nil {
		return toolError(err)
	}
	product.Price = price
	updated, err := a.inv.UpdateProduct(ctx, product)
	if err != nil {
		return toolError(err)
	}
	return map[string]any{"status": "Success", "product": jsonString(toSimple(updated))}
}

func (a *Agent) createProduct(ctx context.Context, args map[string]any) map[string]any {
	in := ledger.ProductInput{
		Name:     argString(args, "name"),
		Category: argString(args, "category"),
		Supplier: argString(args, "supplier"),
	}
	if price, ok := argDecimal(args, "price"); ok {
		in.Price = &price
	}
	if stock, ok := argInt(args, "stock_quantity"); ok {
		in.Stock = &stock
	}
	if minStock, ok := argInt(args, "min_stock"); ok {
		in.MinStock = &minStock
	}

	created, err := a.inv.AddProduct(ctx, in)
	if err != nil {
		return toolError(err)
	}
	return map[string]any{"status": "created", "id": created.ID}
}

func (a *Agent) salesReport(ctx context.Context, args map[string]any) map[string]any {
	start, err1 := time.ParseInLocation("2006-01-02", argString(args, "start_date"), a.now().Location())
	end, err2 := time.ParseInLocation("2006-01-02", argString(args, "end_date"), a.now().Location())
	if err1 != nil || err2 != nil {
		return toolError(errors.New("dates must be in YYYY-MM-DD format"))
	}
	end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)

	report, err := a.reports.SalesReport(ctx, start, end)
	if err != nil {
		logging.WithContext(ctx).WithError(err).Error("assistant sales report failed")
		return toolError(errors.New("error calculating sales"))
	}
	return map[string]any{
		"revenue":     report.TotalRevenue.StringFixed(2),
		"sales_count": report.TotalCount,
		"units_sold":  report.UnitsSold,
	}
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// Numbers arrive as float64; some models send them as strings.
func argDecimal(args map[string]any, key string) (decimal.Decimal, bool) {
	switch v := args[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func argInt(args map[string]any, key string) (int, bool) {
	d, ok := argDecimal(args, key)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}
