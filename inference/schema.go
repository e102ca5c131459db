package inference

import (
	"fmt"

	"google.golang.org/genai"
)

const (
	ToolName        = "update_inventory_tool"
	ToolDescription = "Updates database with detected components."
	Instruction     = "Analyze this image. Call '" + ToolName + "' for every component seen."

	ArgComponentName = "component_name"
	ArgCount         = "count"
	ArgCategory      = "category"
)

// toolDeclaration is sent with every request, it never changes at runtime.
var toolDeclaration = mustToolDeclaration()

func mustToolDeclaration() *genai.FunctionDeclaration {
	decl := &genai.FunctionDeclaration{
		Name:        ToolName,
		Description: ToolDescription,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				ArgComponentName: {Type: genai.TypeString},
				ArgCount:         {Type: genai.TypeInteger},
				ArgCategory:      {Type: genai.TypeString},
			},
			Required: []string{ArgComponentName, ArgCount, ArgCategory},
		},
	}
	if err := validateDeclaration(decl); err != nil {
		panic(err)
	}
	return decl
}

func validateDeclaration(decl *genai.FunctionDeclaration) error {
	if decl.Name == "" {
		return fmt.Errorf("tool declaration has no name")
	}
	if decl.Parameters == nil || decl.Parameters.Type != genai.TypeObject {
		return fmt.Errorf("tool %s: parameters must be an object", decl.Name)
	}
	for _, req := range decl.Parameters.Required {
		if _, ok := decl.Parameters.Properties[req]; !ok {
			return fmt.Errorf("tool %s: required parameter %q is not declared", decl.Name, req)
		}
	}
	return nil
}
