package job

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BartekS5/batchline/pkg/logger"
	"github.com/BartekS5/batchline/pkg/models"
	"github.com/BartekS5/batchline/pkg/utils"
)

// CustomerArchiveWriter mirrors synchronized customers into a MongoDB
// collection, keyed by customer number. It is an optional second sink on the
// synchro jobs; upserts keep replayed chunks harmless.
type CustomerArchiveWriter struct {
	Client     *mongo.Client
	Database   string
	Collection string
}

func (w *CustomerArchiveWriter) Open() error { return nil }

func (w *CustomerArchiveWriter) Write(chunk []models.Customer) error {
	writes := make([]mongo.WriteModel, 0, len(chunk))
	for _, c := range chunk {
		transactions := make([]bson.M, 0, len(c.Transactions))
		for _, t := range c.Transactions {
			transactions = append(transactions, bson.M{
				"number": t.Number,
				"date":   utils.FormatDate(t.TransactionDate),
				"amount": t.Amount,
			})
		}

		doc := bson.M{
			"firstName":    c.FirstName,
			"lastName":     c.LastName,
			"address":      c.Address,
			"city":         c.City,
			"state":        c.State,
			"postCode":     c.PostCode,
			"balance":      c.Balance,
			"transactions": transactions,
		}

		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": c.Number}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}

	if len(writes) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coll := w.Client.Database(w.Database).Collection(w.Collection)
	res, err := coll.BulkWrite(ctx, writes)
	if err != nil {
		return err
	}
	logger.Debugf("archive bulk write: matched %d, modified %d, upserted %d",
		res.MatchedCount, res.ModifiedCount, res.UpsertedCount)
	return nil
}

func (w *CustomerArchiveWriter) Close() error { return nil }
