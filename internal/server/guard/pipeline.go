package guard

import "context"

// Pipeline runs the guards in the order BodySize, ContentType, RateLimit,
// Identity and stops at the first rejection.
type Pipeline struct {
	guards [4]Guard
}

func NewPipeline(body *BodySize, ct ContentType, rl *RateLimit, id *Identity) *Pipeline {
	return &Pipeline{guards: [4]Guard{body, ct, rl, id}}
}

// Run returns the context produced by the last passing guard, or the first
// rejection.
func (p *Pipeline) Run(ctx context.Context, req *Request) (context.Context, *Rejection) {
	for _, g := range p.guards {
		d := g.Decide(ctx, req)
		if r := d.Rejection(); r != nil {
			return ctx, r
		}
		if next := d.Context(); next != nil {
			ctx = next
		}
	}
	return ctx, nil
}
