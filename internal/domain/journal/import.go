package journal

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
)

// SaleRow is one raw historical sale. Product is a name or a numeric id;
// UnitPrice is optional and defaults to the product's current price.
type SaleRow struct {
	Product   string `json:"product"`
	Quantity  string `json:"quantity"`
	Date      string `json:"date"`
	UnitPrice string `json:"unitPrice,omitempty"`
}

// ExpenseRow is one raw historical expense. A blank category means uncategorized.
type ExpenseRow struct {
	Category    string `json:"category,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

type productResolver struct {
	byID         map[int64]*catalog.Product
	activeByName map[string]*catalog.Product
	anyByName    map[string]*catalog.Product
}

func newProductResolver(products []catalog.Product) *productResolver {
	r := &productResolver{
		byID:         make(map[int64]*catalog.Product, len(products)),
		activeByName: make(map[string]*catalog.Product, len(products)),
		anyByName:    make(map[string]*catalog.Product, len(products)),
	}
	for i := range products {
		p := &products[i]
		key := strings.ToLower(catalog.NormalizeProductName(p.Name))
		r.byID[p.ID] = p
		if p.IsActive {
			r.activeByName[key] = p
		}
		if _, ok := r.anyByName[key]; !ok || p.IsActive {
			r.anyByName[key] = p
		}
	}
	return r
}

// resolve prefers an active product by name, then any owned product by name, then by id.
func (r *productResolver) resolve(ref string) *catalog.Product {
	key := strings.ToLower(catalog.NormalizeProductName(ref))
	if p, ok := r.activeByName[key]; ok {
		return p
	}
	if p, ok := r.anyByName[key]; ok {
		return p
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); err == nil {
		return r.byID[id]
	}
	return nil
}

func parseUnits(s string) (int64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsInteger() || !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(1_000_000_000)) {
		return 0, false
	}
	return d.IntPart(), true
}

func parseAmount(s string) (types.Money, string) {
	m, err := types.NewMoneyFromString(s)
	if err != nil {
		return m, "must be a number"
	}
	if m.IsNegative() {
		return m, "must not be negative"
	}
	if m.GreaterThan(types.MaxMoney) {
		return m, "exceeds the storable range"
	}
	return types.RoundMoney(m), ""
}

func (row SaleRow) toSale(userID int64, rowNum int, products *productResolver) (Sale, []apperror.RowError) {
	var errs []apperror.RowError
	fail := func(field, msg string) {
		errs = append(errs, apperror.RowError{Row: rowNum, Field: field, Message: msg})
	}

	var product *catalog.Product
	if strings.TrimSpace(row.Product) == "" {
		fail("product", "product is required")
	} else if product = products.resolve(row.Product); product == nil {
		fail("product", "unknown product "+strconv.Quote(strings.TrimSpace(row.Product)))
	}

	qty, ok := parseUnits(row.Quantity)
	if !ok {
		fail("quantity", "quantity must be a whole number of at least 1")
	}

	date, err := parseImportDate(row.Date)
	if err != nil {
		fail("date", err.Error())
	}

	var unitPrice *types.Money
	if strings.TrimSpace(row.UnitPrice) != "" {
		m, msg := parseAmount(row.UnitPrice)
		if msg != "" {
			fail("unitPrice", "unit price "+msg)
		} else {
			unitPrice = &m
		}
	}

	if len(errs) > 0 {
		return Sale{}, errs
	}

	price := product.Price
	if unitPrice != nil {
		price = *unitPrice
	}
	sale := NewSale(userID, product.ID, qty, price, product.Cost, date)
	if sale.TotalAmount.GreaterThan(types.MaxMoney) || sale.CogsTotal.GreaterThan(types.MaxMoney) {
		return Sale{}, []apperror.RowError{{Row: rowNum, Field: "quantity", Message: "sale total exceeds the storable range"}}
	}
	return sale, nil
}

func (row ExpenseRow) toExpense(userID int64, rowNum int, categories map[string]int64) (Expense, []apperror.RowError) {
	var errs []apperror.RowError
	fail := func(field, msg string) {
		errs = append(errs, apperror.RowError{Row: rowNum, Field: field, Message: msg})
	}

	var categoryID *int64
	if name := catalog.NormalizeCategoryName(row.Category); name != "" {
		if id, ok := categories[strings.ToLower(name)]; ok {
			categoryID = &id
		} else {
			fail("category", "unknown expense category "+strconv.Quote(name))
		}
	}

	amount, msg := parseAmount(row.Amount)
	if msg != "" {
		fail("amount", "amount "+msg)
	}

	date, err := parseImportDate(row.Date)
	if err != nil {
		fail("date", err.Error())
	}

	if len(errs) > 0 {
		return Expense{}, errs
	}

	desc := row.Description
	return Expense{
		UserID:            userID,
		ExpenseCategoryID: categoryID,
		Amount:            amount,
		Description:       trimOptional(&desc),
		ExpenseDate:       date,
	}, nil
}

// --- Sheet mapping ---

var (
	saleColumns = map[string][]string{
		"product":   {"product", "product_name", "product_id", "producto"},
		"quantity":  {"quantity", "qty", "units", "cantidad"},
		"date":      {"date", "sale_date", "fecha"},
		"unitPrice": {"unit_price", "price", "precio"},
	}
	expenseColumns = map[string][]string{
		"category":    {"category", "expense_category", "categoria"},
		"amount":      {"amount", "monto", "total"},
		"date":        {"date", "expense_date", "fecha"},
		"description": {"description", "descripcion", "notes"},
	}
)

func headerKey(h string) string {
	return strings.ReplaceAll(strings.ToLower(catalog.CollapseSpaces(h)), " ", "_")
}

// mapHeader locates each logical column in the header row.
func mapHeader(header []string, columns map[string][]string, required ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[headerKey(h)] = i
	}

	out := make(map[string]int, len(columns))
	for field, aliases := range columns {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				out[field] = i
				break
			}
		}
	}
	for _, field := range required {
		if _, ok := out[field]; !ok {
			return nil, apperror.NewInvalidField(field, "spreadsheet is missing the "+field+" column")
		}
	}
	return out, nil
}

func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SaleRowsFromSheet maps a header row plus data rows to SaleRows.
// Blank rows are kept as rows so error row numbers match the sheet.
func SaleRowsFromSheet(cells [][]string) ([]SaleRow, error) {
	if len(cells) == 0 {
		return nil, apperror.NewInvalidInput("spreadsheet is empty")
	}
	cols, err := mapHeader(cells[0], saleColumns, "product", "quantity", "date")
	if err != nil {
		return nil, err
	}
	rows := make([]SaleRow, 0, len(cells)-1)
	for _, r := range trimTrailingBlank(cells[1:]) {
		rows = append(rows, SaleRow{
			Product:   cell(r, cols, "product"),
			Quantity:  cell(r, cols, "quantity"),
			Date:      cell(r, cols, "date"),
			UnitPrice: cell(r, cols, "unitPrice"),
		})
	}
	return rows, nil
}

// ExpenseRowsFromSheet maps a header row plus data rows to ExpenseRows.
func ExpenseRowsFromSheet(cells [][]string) ([]ExpenseRow, error) {
	if len(cells) == 0 {
		return nil, apperror.NewInvalidInput("spreadsheet is empty")
	}
	cols, err := mapHeader(cells[0], expenseColumns, "amount", "date")
	if err != nil {
		return nil, err
	}
	rows := make([]ExpenseRow, 0, len(cells)-1)
	for _, r := range trimTrailingBlank(cells[1:]) {
		rows = append(rows, ExpenseRow{
			Category:    cell(r, cols, "category"),
			Amount:      cell(r, cols, "amount"),
			Date:        cell(r, cols, "date"),
			Description: cell(r, cols, "description"),
		})
	}
	return rows, nil
}

func trimTrailingBlank(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && blank(rows[end-1]) {
		end--
	}
	return rows[:end]
}
