package personalization

import "storefront-stylist/internal/common/validation"

// responseSchema pins the annotated product array returned by
// /personalize-with-wardrobe.
const responseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "description", "price", "stylist_notes"],
    "properties": {
      "id": {"type": "integer"},
      "name": {"type": "string"},
      "description": {"type": "string"},
      "price": {"type": "number", "minimum": 0},
      "stylist_notes": {
        "type": "object",
        "required": ["style_match", "wardrobe_compatibility", "reason"],
        "properties": {
          "style_match": {"enum": ["Low", "Medium", "High"]},
          "wardrobe_compatibility": {"enum": ["Low", "Medium", "High"]},
          "reason": {"type": "string"}
        }
      }
    }
  }
}`

var compiledResponseSchema = validation.MustCompileSchema(responseSchema)
