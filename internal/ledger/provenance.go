package ledger

import (
	"fmt"
)

// ProductTreeNode is one node of a provenance tree. QuantityUsed and
// Supplier describe the edge from the parent (zero values at the root).
type ProductTreeNode struct {
	Product      Product            `json:"product"`
	QuantityUsed int64              `json:"quantityUsed,omitempty"`
	Supplier     string             `json:"supplier,omitempty"`
	Components   []*ProductTreeNode `json:"components,omitempty"`
}

// RawMaterialSource is one raw-material leaf of a provenance tree, with the
// quantity that flowed from it along that path.
type RawMaterialSource struct {
	ProductID    uint64 `json:"productId"`
	Name         string `json:"name"`
	Supplier     string `json:"supplier"`
	QuantityUsed int64  `json:"quantityUsed"`
}

// GetProductTree expands the provenance DAG rooted at productID into a tree.
// The traversal is iterative over the product arena; it terminates because a
// component entry can only reference a strictly lower id.
func (l *Ledger) GetProductTree(productID uint64) (*ProductTreeNode, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	root, ok := l.productLocked(productID)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}

	rootNode := &ProductTreeNode{Product: root.clone()}
	type frame struct {
		node    *ProductTreeNode
		product *Product
	}
	stack := []frame{{node: rootNode, product: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, comp := range f.product.Components {
			child, ok := l.productLocked(comp.ProductID)
			if !ok {
				// Component ids are assigned from existing products, so a
				// dangling reference means the arena is corrupt.
				return nil, fmt.Errorf("component product %d of %d: %w", comp.ProductID, f.product.ID, ErrNotFound)
			}
			childNode := &ProductTreeNode{
				Product:      child.clone(),
				QuantityUsed: comp.QuantityUsed,
				Supplier:     comp.Supplier,
			}
			f.node.Components = append(f.node.Components, childNode)
			stack = append(stack, frame{node: childNode, product: child})
		}
	}
	return rootNode, nil
}

// GetRawMaterialSources flattens the provenance DAG of productID into its
// raw-material leaves, aggregating quantity per (product, supplier) pair. A
// raw product has no upstream sources and yields an empty slice.
func (l *Ledger) GetRawMaterialSources(productID uint64) ([]RawMaterialSource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	root, ok := l.productLocked(productID)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}

	type edge struct {
		product  *Product
		quantity int64
		supplier string
	}
	var stack []edge
	for _, comp := range root.Components {
		child, ok := l.productLocked(comp.ProductID)
		if !ok {
			return nil, fmt.Errorf("component product %d of %d: %w", comp.ProductID, root.ID, ErrNotFound)
		}
		stack = append(stack, edge{product: child, quantity: comp.QuantityUsed, supplier: comp.Supplier})
	}

	type sourceKey struct {
		productID uint64
		supplier  string
	}
	index := make(map[sourceKey]int)
	sources := []RawMaterialSource{}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !e.product.IsManufactured && len(e.product.Components) == 0 {
			k := sourceKey{productID: e.product.ID, supplier: e.supplier}
			if i, ok := index[k]; ok {
				sources[i].QuantityUsed += e.quantity
				continue
			}
			index[k] = len(sources)
			sources = append(sources, RawMaterialSource{
				ProductID:    e.product.ID,
				Name:         e.product.Name,
				Supplier:     e.supplier,
				QuantityUsed: e.quantity,
			})
			continue
		}

		for _, comp := range e.product.Components {
			child, ok := l.productLocked(comp.ProductID)
			if !ok {
				return nil, fmt.Errorf("component product %d of %d: %w", comp.ProductID, e.product.ID, ErrNotFound)
			}
			stack = append(stack, edge{product: child, quantity: comp.QuantityUsed, supplier: comp.Supplier})
		}
	}
	return sources, nil
}
