package db

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/vidstream/log"
	"github.com/jsphweid/vidstream/model"
	"github.com/pkg/errors"
)

// DynamoDB caps BatchGetItem at 100 keys per call.
const maxBatchSize = 100

// Throttled keys come back in UnprocessedKeys and are asked for again this
// many times before they are given up on.
const maxBatchAttempts = 3

// Source looks up optional display metadata for videos by filename.
type Source interface {
	GetVideoMetadatas(ctx context.Context, filenames []string) (map[string]model.VideoMetadata, error)
}

type Dynamo struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

// NewDynamo connects to the metadata table at endpoint. Items are keyed by
// filename in the "PK" attribute.
func NewDynamo(endpoint string, region string, table string) (*Dynamo, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create a DynamoDB session")
	}
	return NewDynamoWithClient(dynamodb.New(sess), table), nil
}

func NewDynamoWithClient(client dynamodbiface.DynamoDBAPI, table string) *Dynamo {
	return &Dynamo{client: client, table: table}
}

func (d *Dynamo) GetVideoMetadatas(ctx context.Context, filenames []string) (map[string]model.VideoMetadata, error) {
	res := make(map[string]model.VideoMetadata)

	for start := 0; start < len(filenames); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(filenames) {
			end = len(filenames)
		}
		if err := d.getBatch(ctx, filenames[start:end], res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (d *Dynamo) getBatch(ctx context.Context, filenames []string, res map[string]model.VideoMetadata) error {
	var keys []map[string]*dynamodb.AttributeValue
	for _, filename := range filenames {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(filename),
		}
		keys = append(keys, key)
	}

	requestItems := map[string]*dynamodb.KeysAndAttributes{
		d.table: {Keys: keys},
	}
	for attempt := 1; len(requestItems) > 0; attempt++ {
		if attempt > maxBatchAttempts {
			log.S().Warnf("Giving up on metadata for %d videos after %d attempts", countKeys(requestItems), maxBatchAttempts)
			return nil
		}

		dbres, err := d.client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{RequestItems: requestItems})
		if err != nil {
			return errors.Wrap(err, "error from DynamoDB")
		}

		for _, v := range dbres.Responses[d.table] {
			pk, ok := v["PK"]
			if !ok || pk.S == nil {
				continue
			}
			res[*pk.S] = toVideoMetadata(v)
		}
		requestItems = dbres.UnprocessedKeys
	}
	return nil
}

func countKeys(items map[string]*dynamodb.KeysAndAttributes) int {
	n := 0
	for _, ka := range items {
		if ka != nil {
			n += len(ka.Keys)
		}
	}
	return n
}

func toVideoMetadata(item map[string]*dynamodb.AttributeValue) model.VideoMetadata {
	var m model.VideoMetadata
	if v, ok := item["Year"]; ok && v.N != nil {
		year, _ := strconv.ParseUint(*v.N, 10, 32)
		m.Year = uint(year)
	}
	if v, ok := item["Title"]; ok && v.S != nil {
		m.Title = *v.S
	}
	if v, ok := item["Description"]; ok && v.S != nil {
		m.Description = *v.S
	}
	return m
}
