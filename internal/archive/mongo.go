package archive

import (
	"context"
	"fmt"
	"time"

	"go-jewelry-pos/internal/export"
	"go-jewelry-pos/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type saleItemDoc struct {
	ItemCode  string `bson:"item_code,omitempty"`
	Name      string `bson:"name"`
	Purity    string `bson:"purity,omitempty"`
	Weight    string `bson:"weight"`
	Quantity  int    `bson:"quantity"`
	UnitPrice int64  `bson:"unit_price"`
	LineTotal int64  `bson:"line_total"`
	Free      bool   `bson:"free"`
}

type paymentDoc struct {
	Amount     int64     `bson:"amount"`
	Method     string    `bson:"method"`
	PaidAt     time.Time `bson:"paid_at"`
	ReceivedBy string    `bson:"received_by"`
}

type saleDoc struct {
	Number        string        `bson:"number"`
	Type          string        `bson:"type"`
	Date          string        `bson:"date"`
	CustomerName  string        `bson:"customer_name"`
	CustomerPhone string        `bson:"customer_phone"`
	PaymentMethod string        `bson:"payment_method"`
	Total         int64         `bson:"total"`
	DownPayment   int64         `bson:"down_payment"`
	Remaining     int64         `bson:"remaining"`
	Status        string        `bson:"status"`
	SalesPerson   string        `bson:"sales_person"`
	Note          string        `bson:"note"`
	Items         []saleItemDoc `bson:"items"`
	Payments      []paymentDoc  `bson:"payments"`
	CreatedBy     string        `bson:"created_by"`
	CreatedAt     time.Time     `bson:"created_at"`
}

type buybackDoc struct {
	Number        string    `bson:"number"`
	Date          string    `bson:"date"`
	CustomerName  string    `bson:"customer_name"`
	CustomerPhone string    `bson:"customer_phone"`
	Description   string    `bson:"description"`
	Purity        string    `bson:"purity"`
	Weight        string    `bson:"weight"`
	Grade         string    `bson:"grade"`
	PricePerGram  int64     `bson:"price_per_gram"`
	Percentage    string    `bson:"percentage"`
	RawPrice      int64     `bson:"raw_price"`
	OfferPrice    int64     `bson:"offer_price"`
	PaidPrice     int64     `bson:"paid_price"`
	Note          string    `bson:"note"`
	CreatedBy     string    `bson:"created_by"`
	CreatedAt     time.Time `bson:"created_at"`
}

func newSaleDoc(s model.Sale) saleDoc {
	doc := saleDoc{
		Number:        s.Number,
		Type:          string(s.Type),
		Date:          s.Date.Format(model.DateLayout),
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		PaymentMethod: string(s.PaymentMethod),
		Total:         s.Total,
		DownPayment:   s.DownPayment,
		Remaining:     s.Remaining,
		Status:        string(s.Status),
		SalesPerson:   s.SalesPerson,
		Note:          s.Note,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range s.Items {
		doc.Items = append(doc.Items, saleItemDoc{
			ItemCode:  it.ItemCode,
			Name:      it.Name,
			Purity:    it.Purity,
			Weight:    it.Weight.String(),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
			Free:      it.Free,
		})
	}
	for _, p := range s.Payments {
		doc.Payments = append(doc.Payments, paymentDoc{
			Amount:     p.Amount,
			Method:     string(p.Method),
			PaidAt:     p.PaidAt,
			ReceivedBy: p.ReceivedBy,
		})
	}
	return doc
}

func newBuybackDoc(b model.Buyback) buybackDoc {
	return buybackDoc{
		Number:        b.Number,
		Date:          b.Date.Format(model.DateLayout),
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Description:   b.Description,
		Purity:        b.Purity,
		Weight:        b.Weight.String(),
		Grade:         string(b.Grade),
		PricePerGram:  b.PricePerGram,
		Percentage:    b.Percentage.String(),
		RawPrice:      b.RawPrice,
		OfferPrice:    b.OfferPrice,
		PaidPrice:     b.PaidPrice,
		Note:          b.Note,
		CreatedBy:     b.CreatedBy,
		CreatedAt:     b.CreatedAt,
	}
}

const (
	salesCollection    = "sales"
	buybacksCollection = "buybacks"
)

// MongoSink stores whole sale and buyback documents keyed by their number.
type MongoSink struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

func NewMongoSink(ctx context.Context, uri, dbName string, logger *zap.Logger) (*MongoSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoSink{client: client, dbName: dbName, logger: logger}, nil
}

func (m *MongoSink) Name() string { return "mongodb" }

func (m *MongoSink) Archive(ctx context.Context, data export.Dataset) (int, error) {
	db := m.client.Database(m.dbName)
	upsert := options.Replace().SetUpsert(true)
	written := 0

	sales := db.Collection(salesCollection)
	for _, s := range data.Sales {
		if _, err := sales.ReplaceOne(ctx, bson.M{"number": s.Number}, newSaleDoc(s), upsert); err != nil {
			return written, fmt.Errorf("failed to archive sale %s: %w", s.Number, err)
		}
		written++
	}

	buybacks := db.Collection(buybacksCollection)
	for _, b := range data.Buybacks {
		if _, err := buybacks.ReplaceOne(ctx, bson.M{"number": b.Number}, newBuybackDoc(b), upsert); err != nil {
			return written, fmt.Errorf("failed to archive buyback %s: %w", b.Number, err)
		}
		written++
	}

	m.logger.Info("records archived", zap.String("sink", m.Name()), zap.Int("count", written))
	return written, nil
}

func (m *MongoSink) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
