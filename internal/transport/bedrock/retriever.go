// Package bedrock adapts the managed knowledge-base retrieval API to the
// search domain.
package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"go.uber.org/zap"

	"github.com/kansei-cloud/docket/internal/domain"
	domsearch "github.com/kansei-cloud/docket/internal/domain/search"
)

// retrieveAPI is the subset of the bedrockagentruntime client used here.
type retrieveAPI interface {
	Retrieve(ctx context.Context, in *bedrockagentruntime.RetrieveInput,
		opts ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// Config holds retrieval backend settings.
type Config struct {
	KnowledgeBaseID string
	Region          string
	Logger          *zap.Logger
}

// Retriever queries a managed knowledge base for ranked text chunks.
type Retriever struct {
	client          retrieveAPI
	knowledgeBaseID string
	logger          *zap.Logger
}

// NewRetriever creates a knowledge-base retriever. An empty knowledge base
// id is allowed at construction; Retrieve reports it as unconfigured.
func NewRetriever(ctx context.Context, cfg Config) (*Retriever, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Retriever{
		client:          bedrockagentruntime.NewFromConfig(awsCfg),
		knowledgeBaseID: cfg.KnowledgeBaseID,
		logger:          logger,
	}, nil
}

// Ready reports whether the retriever is configured to serve queries.
func (r *Retriever) Ready(_ context.Context) error {
	if r.knowledgeBaseID == "" {
		return fmt.Errorf("knowledge base id is not set: %w", domain.ErrUnconfigured)
	}
	return nil
}

// Retrieve returns up to limit ranked hits for the query text.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]domsearch.Hit, error) {
	if r.knowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base id is not set: %w", domain.ErrUnconfigured)
	}

	out, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.knowledgeBaseID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(int32(limit)),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve from knowledge base %s: %w", r.knowledgeBaseID, err)
	}

	hits := make([]domsearch.Hit, 0, len(out.RetrievalResults))
	for _, res := range out.RetrievalResults {
		hits = append(hits, r.toHit(res))
	}
	return hits, nil
}

func (r *Retriever) toHit(res types.KnowledgeBaseRetrievalResult) domsearch.Hit {
	var hit domsearch.Hit

	if res.Location != nil && res.Location.S3Location != nil {
		hit.Locator = aws.ToString(res.Location.S3Location.Uri)
	}
	if res.Content != nil {
		hit.Text = aws.ToString(res.Content.Text)
	}
	hit.Score = aws.ToFloat64(res.Score)

	if len(res.Metadata) > 0 {
		hit.Metadata = make(map[string]any, len(res.Metadata))
		for k, doc := range res.Metadata {
			var v any
			if err := doc.UnmarshalSmithyDocument(&v); err != nil {
				r.logger.Warn("skip unreadable hit metadata", zap.String("key", k), zap.Error(err))
				continue
			}
			hit.Metadata[k] = v
		}
	}
	return hit
}
