package dataset

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectGetter struct {
	objects map[string]string
	calls   []string
}

func (f *fakeObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls = append(f.calls, *params.Key)
	body, ok := f.objects[*params.Key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", *params.Key)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source_Load(t *testing.T) {
	getter := &fakeObjectGetter{objects: map[string]string{
		"exports/" + OrdersFile:     ordersCSV,
		"exports/" + OrderItemsFile: "order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value\no1,1,p1,s1,2023-05-05 00:00:00,49.90,8.10\n",
		"exports/" + ProductsFile:   "product_id,product_category_name,product_name_length,product_description_length,product_photos_qty,product_weight_g,product_length_cm,product_height_cm,product_width_cm\np1,toys,10,100,1,200,10,10,10\n",
		"exports/" + CustomersFile:  "customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\nc1,u1,94103,san francisco,CA\n",
		"exports/" + ReviewsFile:    "review_id,order_id,review_score,review_comment_title,review_comment_message,review_creation_date,review_answer_timestamp\nr1,o1,4,,,2023-05-06 00:00:00,\n",
	}}

	src := &S3Source{Client: getter, Bucket: "datasets", Prefix: "exports"}
	tables, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, tables.Orders, 2)
	assert.Len(t, tables.OrderItems, 1)
	assert.Len(t, getter.calls, 5)
}

func TestS3Source_Load_MissingObject(t *testing.T) {
	src := &S3Source{Client: &fakeObjectGetter{objects: map[string]string{}}, Bucket: "datasets"}
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), OrdersFile)
}
