package research

import "github.com/sells-group/prospect-intel/internal/model"

// Synthesize merges the successful per-domain results into the enrichment
// view handed to scoring and persistence. Failed domains are simply absent.
// Pure function; the input map is not mutated.
func Synthesize(results map[model.Domain]model.QueryResult) map[model.Domain]model.SynthesizedEntry {
	out := make(map[model.Domain]model.SynthesizedEntry, len(results))
	for domain, qr := range results {
		if !qr.Success {
			continue
		}
		out[domain] = model.SynthesizedEntry{
			Content:   qr.Content,
			Citations: append([]string(nil), qr.Citations...),
			LatencyMS: qr.LatencyMS,
		}
	}
	return out
}
