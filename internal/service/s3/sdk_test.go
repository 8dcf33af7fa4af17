package s3_test

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/service/s3"
)

// Exercises the handler through the official SDK: if the SDK's XML
// unmarshalling and header handling accept our responses, so will real
// applications pointed at the emulator.
func TestSDKRoundTrip(t *testing.T) {
	srv := httptest.NewServer(s3.NewHandler(s3.NewStore("us-east-1")))
	defer srv.Close()
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)
	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	_, err = client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String("sdk-bucket")})
	require.NoError(t, err)

	put, err := client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String("sdk-bucket"),
		Key:         aws.String("nested/hello.txt"),
		Body:        bytes.NewReader([]byte("hello world")),
		ContentType: aws.String("text/plain"),
	})
	require.NoError(t, err)
	assert.Equal(t, `"5eb63bbbe01eeed093cb22bb8f5acdc3"`, aws.ToString(put.ETag))

	got, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String("sdk-bucket"),
		Key:    aws.String("nested/hello.txt"),
	})
	require.NoError(t, err)
	body, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
	assert.Equal(t, "text/plain", aws.ToString(got.ContentType))

	ranged, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String("sdk-bucket"),
		Key:    aws.String("nested/hello.txt"),
		Range:  aws.String("bytes=0-4"),
	})
	require.NoError(t, err)
	body, err = io.ReadAll(ranged.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	list, err := client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket: aws.String("sdk-bucket"),
		Prefix: aws.String("nested/"),
	})
	require.NoError(t, err)
	require.Len(t, list.Contents, 1)
	assert.Equal(t, "nested/hello.txt", aws.ToString(list.Contents[0].Key))

	mp, err := client.CreateMultipartUpload(ctx, &awss3.CreateMultipartUploadInput{
		Bucket: aws.String("sdk-bucket"),
		Key:    aws.String("assembled"),
	})
	require.NoError(t, err)
	part1, err := client.UploadPart(ctx, &awss3.UploadPartInput{
		Bucket:     aws.String("sdk-bucket"),
		Key:        aws.String("assembled"),
		UploadId:   mp.UploadId,
		PartNumber: aws.Int32(1),
		Body:       bytes.NewReader([]byte("first part bytes")),
	})
	require.NoError(t, err)
	part2, err := client.UploadPart(ctx, &awss3.UploadPartInput{
		Bucket:     aws.String("sdk-bucket"),
		Key:        aws.String("assembled"),
		UploadId:   mp.UploadId,
		PartNumber: aws.Int32(2),
		Body:       bytes.NewReader([]byte("second part bytes")),
	})
	require.NoError(t, err)
	done, err := client.CompleteMultipartUpload(ctx, &awss3.CompleteMultipartUploadInput{
		Bucket:   aws.String("sdk-bucket"),
		Key:      aws.String("assembled"),
		UploadId: mp.UploadId,
		MultipartUpload: &s3types.CompletedMultipartUpload{
			Parts: []s3types.CompletedPart{
				{PartNumber: aws.Int32(1), ETag: part1.ETag},
				{PartNumber: aws.Int32(2), ETag: part2.ETag},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `"381241e9e7290b2548d7aaae1e6fec61-2"`, aws.ToString(done.ETag))

	_, err = client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String("sdk-bucket"), Key: aws.String("assembled"),
	})
	require.NoError(t, err)
	_, err = client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String("sdk-bucket"), Key: aws.String("nested/hello.txt"),
	})
	require.NoError(t, err)
	_, err = client.DeleteBucket(ctx, &awss3.DeleteBucketInput{Bucket: aws.String("sdk-bucket")})
	require.NoError(t, err)
}
