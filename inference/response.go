package inference

import "google.golang.org/genai"

// Image is the payload sent to the model.
type Image struct {
	Data     []byte
	MIMEType string
}

type FunctionCall struct {
	Name string
	Args map[string]any
}

// Part is one piece of a model answer, it carries text, a function call or neither.
type Part struct {
	Text         string
	FunctionCall *FunctionCall
}

// Response is a provider independent view of a model answer.
type Response struct {
	Parts []Part
}

func fromGenAI(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return out
	}
	for _, p := range candidate.Content.Parts {
		if p == nil {
			continue
		}
		part := Part{Text: p.Text}
		if p.FunctionCall != nil {
			part.FunctionCall = &FunctionCall{
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			}
		}
		out.Parts = append(out.Parts, part)
	}
	return out
}
