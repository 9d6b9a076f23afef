package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chainware/supplyledger/internal/ledger"
	"github.com/chainware/supplyledger/internal/metrics"
	"github.com/chainware/supplyledger/pkg/cache"
	"github.com/chainware/supplyledger/pkg/eventbus"
)

// provenanceTTL bounds how stale a memoized provenance read model can get.
// Tree structure is immutable once a lot exists; only the per-node quantity
// and owner fields drift, so a short TTL is enough.
const provenanceTTL = 30 * time.Second

// LedgerHandler handles HTTP API requests against the supply ledger.
type LedgerHandler struct {
	logger *zap.Logger
	ledger *ledger.Ledger

	trees      *cache.Cache[*ledger.ProductTreeNode]
	rawSources *cache.Cache[[]ledger.RawMaterialSource]
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(logger *zap.Logger, l *ledger.Ledger) *LedgerHandler {
	return &LedgerHandler{
		logger:     logger,
		ledger:     l,
		trees:      cache.New[*ledger.ProductTreeNode](provenanceTTL),
		rawSources: cache.New[[]ledger.RawMaterialSource](provenanceTTL),
	}
}

// AttachInvalidation flushes the memoized provenance read models whenever a
// mutation touches the product DAG. A consumed or transferred lot shows up
// in every descendant's tree, so the whole cache is dropped rather than
// chasing affected keys. Events publish synchronously after each commit, so
// a read issued after a mutation returns never sees the stale entry.
func (h *LedgerHandler) AttachInvalidation(bus *eventbus.EventBus) {
	bus.SubscribeFunc(func(ledger.ProductManufacturedEvent) { h.flushProvenance() })
	bus.SubscribeFunc(func(ledger.ProductTransferredEvent) { h.flushProvenance() })
	bus.SubscribeFunc(func(ledger.InventoryConsumedEvent) { h.flushProvenance() })
}

func (h *LedgerHandler) flushProvenance() {
	h.trees.Reset()
	h.rawSources.Reset()
}

func paramID(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}

func observe(op string, err error) {
	if err != nil {
		metrics.IncOperation(op, "error")
		return
	}
	metrics.IncOperation(op, "ok")
}

// RegisterCompany registers the calling address as a company.
func (h *LedgerHandler) RegisterCompany(c *fiber.Ctx) error {
	var req RegisterCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	company, err := h.ledger.RegisterCompany(actorFrom(c), req.Name)
	observe("register_company", err)
	if err != nil {
		h.logger.Warn("api.register_company.failed",
			zap.String("actor", actorFrom(c)), zap.Error(err))
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// UpdateCompany updates the caller's registered details.
func (h *LedgerHandler) UpdateCompany(c *fiber.Ctx) error {
	var req UpdateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	company, err := h.ledger.UpdateCompanyDetails(actorFrom(c), req.Name, req.NewAddress)
	observe("update_company", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(company)
}

// GetCompany returns one company by address.
func (h *LedgerHandler) GetCompany(c *fiber.Ctx) error {
	company, err := h.ledger.GetCompany(c.Params("address"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(company)
}

// ListCompanies returns every registered company.
func (h *LedgerHandler) ListCompanies(c *fiber.Ctx) error {
	return c.JSON(h.ledger.Companies())
}

// CreateProduct creates a raw product lot owned by the caller.
func (h *LedgerHandler) CreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	price, err := parsePrice(req.PricePerUnit)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := h.ledger.CreateProduct(actorFrom(c), ledger.ProductSpec{
		Name:         req.Name,
		Description:  req.Description,
		ImageHash:    req.ImageHash,
		Quantity:     req.Quantity,
		PricePerUnit: price,
	})
	observe("create_product", err)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// ManufactureProduct consumes ingredient inventory into a new product.
func (h *LedgerHandler) ManufactureProduct(c *fiber.Ctx) error {
	var req ManufactureProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	price, err := parsePrice(req.PricePerUnit)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := h.ledger.ManufactureProduct(actorFrom(c), ledger.ProductSpec{
		Name:         req.Name,
		Description:  req.Description,
		ImageHash:    req.ImageHash,
		Quantity:     req.Quantity,
		PricePerUnit: price,
	}, req.IngredientIDs, req.QuantitiesNeeded)
	observe("manufacture_product", err)
	if err != nil {
		h.logger.Warn("api.manufacture_product.failed",
			zap.String("actor", actorFrom(c)), zap.Error(err))
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// TransferProduct moves quantity of a caller-owned product to another company.
func (h *LedgerHandler) TransferProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req TransferProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}

	lotID, err := h.ledger.TransferProduct(actorFrom(c), id, req.NewOwner, req.Quantity)
	observe("transfer_product", err)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"lotId": lotID})
}

// GetProduct returns one product lot by id.
func (h *LedgerHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	p, err := h.ledger.GetProduct(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// ListProducts returns products, optionally filtered by owner.
func (h *LedgerHandler) ListProducts(c *fiber.Ctx) error {
	owner := c.Query("owner")
	if owner == "" {
		return badRequest(c, fiber.NewError(fiber.StatusBadRequest, "owner query parameter is required"))
	}
	return c.JSON(h.ledger.ProductsByOwner(owner))
}

// GetProductTree returns the full provenance tree of a product.
func (h *LedgerHandler) GetProductTree(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	key := c.Params("id")
	if tree, ok := h.trees.Get(key); ok {
		return c.JSON(tree)
	}
	tree, err := h.ledger.GetProductTree(id)
	if err != nil {
		return fail(c, err)
	}
	h.trees.Put(key, tree)
	return c.JSON(tree)
}

// GetRawMaterialSources returns the aggregated raw-material leaves of a
// product's provenance tree.
func (h *LedgerHandler) GetRawMaterialSources(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	key := c.Params("id")
	if sources, ok := h.rawSources.Get(key); ok {
		return c.JSON(sources)
	}
	sources, err := h.ledger.GetRawMaterialSources(id)
	if err != nil {
		return fail(c, err)
	}
	h.rawSources.Put(key, sources)
	return c.JSON(sources)
}
