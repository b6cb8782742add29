package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	btypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"golang.org/x/time/rate"

	"github.com/deeporg/deeporg/pkg/organizer"
	"github.com/deeporg/deeporg/pkg/tools"
)

// BedrockProvider talks to AWS Bedrock through the Converse API, which
// normalizes tool use across the models Bedrock hosts.
type BedrockProvider struct {
	client    *bedrockruntime.Client
	awsCfg    aws.Config
	cfgErr    error
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

func NewBedrockProvider(model string, opts ...Option) *BedrockProvider {
	o := newOptions(opts)

	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.region))
	}
	loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(o.maxRetries+1))

	p := &BedrockProvider{
		model:     model,
		maxTokens: o.maxTokens,
		limiter:   o.limiter,
	}
	p.awsCfg, p.cfgErr = awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if p.cfgErr == nil {
		clientOpts := []func(*bedrockruntime.Options){}
		if o.baseURL != "" {
			clientOpts = append(clientOpts, func(bo *bedrockruntime.Options) {
				bo.BaseEndpoint = aws.String(o.baseURL)
			})
		}
		p.client = bedrockruntime.NewFromConfig(p.awsCfg, clientOpts...)
	}
	return p
}

func (p *BedrockProvider) Name() string  { return "bedrock" }
func (p *BedrockProvider) Model() string { return p.model }

func (p *BedrockProvider) Ready(ctx context.Context) error {
	if p.cfgErr != nil {
		return organizer.Wrap(p.cfgErr, organizer.KindMissingCredential, "AWS configuration could not be loaded: %v", p.cfgErr)
	}
	if _, err := p.awsCfg.Credentials.Retrieve(ctx); err != nil {
		return organizer.Wrap(err, organizer.KindMissingCredential, "AWS credentials are not configured: %v", err)
	}
	return nil
}

func (p *BedrockProvider) Chat(ctx context.Context, system string, messages []Message, defs []tools.ToolDefinition) (*Response, error) {
	if p.client == nil {
		return nil, fmt.Errorf("bedrock client unavailable: %w", p.cfgErr)
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	out, err := p.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:  aws.String(p.model),
		System:   []btypes.SystemContentBlock{&btypes.SystemContentBlockMemberText{Value: system}},
		Messages: toBedrockMessages(messages),
		InferenceConfig: &btypes.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(p.maxTokens)),
		},
		ToolConfig: toBedrockTools(defs),
	})
	if err != nil {
		return nil, err
	}

	resp := &Response{StopReason: string(out.StopReason)}
	outMsg, ok := out.Output.(*btypes.ConverseOutputMemberMessage)
	if !ok {
		return resp, nil
	}
	for _, block := range outMsg.Value.Content {
		switch b := block.(type) {
		case *btypes.ContentBlockMemberText:
			resp.Content += b.Value
		case *btypes.ContentBlockMemberToolUse:
			args := "{}"
			if b.Value.Input != nil {
				if raw, err := b.Value.Input.MarshalSmithyDocument(); err == nil {
					args = string(raw)
				}
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        aws.ToString(b.Value.ToolUseId),
				Name:      aws.ToString(b.Value.Name),
				Arguments: args,
			})
		}
	}
	return resp, nil
}

// toBedrockMessages rebuilds the wire history. Converse enforces strictly
// alternating user and assistant turns, so consecutive tool results are
// folded into one user message.
func toBedrockMessages(messages []Message) []btypes.Message {
	out := make([]btypes.Message, 0, len(messages))
	var pendingResults []btypes.ContentBlock

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, btypes.Message{
				Role:    btypes.ConversationRoleUser,
				Content: pendingResults,
			})
			pendingResults = nil
		}
	}

	for _, m := range messages {
		switch m.Role {
		case RoleTool:
			status := btypes.ToolResultStatusSuccess
			if m.IsError {
				status = btypes.ToolResultStatusError
			}
			pendingResults = append(pendingResults, &btypes.ContentBlockMemberToolResult{
				Value: btypes.ToolResultBlock{
					ToolUseId: aws.String(m.ToolCallID),
					Status:    status,
					Content: []btypes.ToolResultContentBlock{
						&btypes.ToolResultContentBlockMemberText{Value: m.Content},
					},
				},
			})
		case RoleAssistant:
			flush()
			var blocks []btypes.ContentBlock
			if m.Content != "" {
				blocks = append(blocks, &btypes.ContentBlockMemberText{Value: m.Content})
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, &btypes.ContentBlockMemberToolUse{
					Value: btypes.ToolUseBlock{
						ToolUseId: aws.String(tc.ID),
						Name:      aws.String(tc.Name),
						Input:     document.NewLazyDocument(parseArgsObject(tc.Arguments)),
					},
				})
			}
			out = append(out, btypes.Message{Role: btypes.ConversationRoleAssistant, Content: blocks})
		default:
			flush()
			out = append(out, btypes.Message{
				Role:    btypes.ConversationRoleUser,
				Content: []btypes.ContentBlock{&btypes.ContentBlockMemberText{Value: m.Content}},
			})
		}
	}
	flush()
	return out
}

func toBedrockTools(defs []tools.ToolDefinition) *btypes.ToolConfiguration {
	if len(defs) == 0 {
		return nil
	}
	specs := make([]btypes.Tool, 0, len(defs))
	for _, d := range defs {
		specs = append(specs, &btypes.ToolMemberToolSpec{
			Value: btypes.ToolSpecification{
				Name:        aws.String(d.Name),
				Description: aws.String(d.Description),
				InputSchema: &btypes.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(d.Parameters),
				},
			},
		})
	}
	return &btypes.ToolConfiguration{Tools: specs}
}

func parseArgsObject(raw string) map[string]any {
	args := map[string]any{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &args)
	}
	return args
}
