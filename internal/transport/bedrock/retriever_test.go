package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"go.uber.org/zap"

	"github.com/kansei-cloud/docket/internal/domain"
)

type fakeRetrieveAPI struct {
	out  *bedrockagentruntime.RetrieveOutput
	err  error
	last *bedrockagentruntime.RetrieveInput
}

func (f *fakeRetrieveAPI) Retrieve(_ context.Context, in *bedrockagentruntime.RetrieveInput,
	_ ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error) {
	f.last = in
	return f.out, f.err
}

func TestRetrieve_MapsResultsToHits(t *testing.T) {
	api := &fakeRetrieveAPI{
		out: &bedrockagentruntime.RetrieveOutput{
			RetrievalResults: []types.KnowledgeBaseRetrievalResult{
				{
					Content: &types.RetrievalResultContent{Text: aws.String("chunk text")},
					Location: &types.RetrievalResultLocation{
						S3Location: &types.RetrievalResultS3Location{
							Uri: aws.String("s3://bucket/documents/1_a.pdf"),
						},
					},
					Score: aws.Float64(0.87),
				},
				{
					Content: &types.RetrievalResultContent{Text: aws.String("no location")},
				},
			},
		},
	}
	r := &Retriever{client: api, knowledgeBaseID: "kb-1", logger: zap.NewNop()}

	hits, err := r.Retrieve(context.Background(), "policy", 10)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Locator != "s3://bucket/documents/1_a.pdf" {
		t.Errorf("locator = %q", hits[0].Locator)
	}
	if hits[0].Text != "chunk text" || hits[0].Score != 0.87 {
		t.Errorf("hit = %+v", hits[0])
	}
	if hits[1].Locator != "" {
		t.Errorf("hit without location must carry an empty locator, got %q", hits[1].Locator)
	}

	if got := aws.ToString(api.last.KnowledgeBaseId); got != "kb-1" {
		t.Errorf("knowledge base id = %q", got)
	}
	n := api.last.RetrievalConfiguration.VectorSearchConfiguration.NumberOfResults
	if aws.ToInt32(n) != 10 {
		t.Errorf("result count = %d, want 10", aws.ToInt32(n))
	}
}

func TestRetrieve_UnconfiguredKnowledgeBase(t *testing.T) {
	r := &Retriever{client: &fakeRetrieveAPI{}, logger: zap.NewNop()}

	_, err := r.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrUnconfigured) {
		t.Fatalf("expected ErrUnconfigured, got %v", err)
	}
}

func TestRetrieve_BackendError(t *testing.T) {
	api := &fakeRetrieveAPI{err: errors.New("throttled")}
	r := &Retriever{client: api, knowledgeBaseID: "kb-1", logger: zap.NewNop()}

	if _, err := r.Retrieve(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error")
	}
}
