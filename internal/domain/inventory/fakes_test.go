package inventory

import (
	"context"
	"sort"
	"strings"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/journal"
)

// memStore implements every storage interface of the package and rolls back
// to a snapshot when a transaction fails.
type memStore struct {
	nextID    int64
	products  map[int64]catalog.Product
	materials map[int64]Material
	purchases map[int64]Purchase
	sales     map[int64]journal.Sale
	locks     []int64
	failNext  error
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[int64]catalog.Product{},
		materials: map[int64]Material{},
		purchases: map[int64]Purchase{},
		sales:     map[int64]journal.Sale{},
	}
}

func (s *memStore) id() int64 { s.nextID++; return s.nextID }

func (s *memStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	products := cloneMap(s.products)
	materials := cloneMap(s.materials)
	purchases := cloneMap(s.purchases)
	sales := cloneMap(s.sales)
	if err := fn(ctx); err != nil {
		s.products, s.materials, s.purchases, s.sales = products, materials, purchases, sales
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) addProduct(p catalog.Product) int64 {
	p.ID = s.id()
	p.IsActive = true
	s.products[p.ID] = p
	return p.ID
}

func (s *memStore) GetProductForUpdate(_ context.Context, userID, id int64) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, apperror.NewNotFound("product", id)
	}
	if p.UserID != userID {
		return nil, apperror.NewAccessDenied("record belongs to another account")
	}
	s.locks = append(s.locks, id)
	return &p, nil
}

func (s *memStore) UpdateProductStock(_ context.Context, _ int64, id int64, stock int64) error {
	p := s.products[id]
	p.Stock = stock
	s.products[id] = p
	return nil
}

func (s *memStore) InsertSale(_ context.Context, sale *journal.Sale) error {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	sale.ID = s.id()
	s.sales[sale.ID] = *sale
	return nil
}

func (s *memStore) GetSale(_ context.Context, userID, id int64) (*journal.Sale, error) {
	sale, ok := s.sales[id]
	if !ok {
		return nil, apperror.NewNotFound("sale", id)
	}
	if sale.UserID != userID {
		return nil, apperror.NewAccessDenied("record belongs to another account")
	}
	return &sale, nil
}

func (s *memStore) DeleteSale(_ context.Context, _ int64, id int64) error {
	delete(s.sales, id)
	return nil
}

func (s *memStore) ListMaterials(_ context.Context, userID int64, includeInactive bool) ([]Material, error) {
	var out []Material
	for _, m := range s.materials {
		if m.UserID == userID && (includeInactive || m.IsActive) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) GetMaterial(_ context.Context, userID, id int64) (*Material, error) {
	m, ok := s.materials[id]
	if !ok {
		return nil, apperror.NewNotFound("material", id)
	}
	if m.UserID != userID {
		return nil, apperror.NewAccessDenied("record belongs to another account")
	}
	return &m, nil
}

func (s *memStore) GetMaterialForUpdate(ctx context.Context, userID, id int64) (*Material, error) {
	m, err := s.GetMaterial(ctx, userID, id)
	if err == nil {
		s.locks = append(s.locks, id)
	}
	return m, err
}

func (s *memStore) FindMaterialByName(_ context.Context, userID int64, name string) (*Material, error) {
	for _, m := range s.materials {
		if m.UserID == userID && strings.EqualFold(m.Name, name) {
			return &m, nil
		}
	}
	return nil, apperror.NewNotFound("material", name)
}

func (s *memStore) CreateMaterial(_ context.Context, m *Material) error {
	m.ID = s.id()
	s.materials[m.ID] = *m
	return nil
}

func (s *memStore) UpdateMaterial(_ context.Context, m *Material) error {
	s.materials[m.ID] = *m
	return nil
}

func (s *memStore) SetMaterialStock(_ context.Context, _ int64, id int64, stock types.Quantity, avg types.Money) error {
	m := s.materials[id]
	m.CurrentStock, m.AverageCost = stock, avg
	s.materials[id] = m
	return nil
}

func (s *memStore) MaterialsWithPurchases(_ context.Context, _ int64, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		for _, p := range s.purchases {
			if p.MaterialID == id {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) DeleteMaterials(_ context.Context, _ int64, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.materials[id]; ok {
			delete(s.materials, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) InsertPurchase(_ context.Context, p *Purchase) error {
	p.ID = s.id()
	s.purchases[p.ID] = *p
	return nil
}

func (s *memStore) ListPurchases(_ context.Context, userID int64, materialID *int64, r types.DateRange) ([]Purchase, error) {
	var out []Purchase
	for _, p := range s.purchases {
		if p.UserID != userID || (materialID != nil && p.MaterialID != *materialID) || !r.Contains(p.PurchaseDate) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
