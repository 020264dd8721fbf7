// Package docs is the Swagger specification of the API, served at /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "FIFA Analytics"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/dataset": {
            "get": {
                "description": "Returns row and column counts, the first column names, categorical columns and the cleaning report.",
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Dataset info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DatasetInfo"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/dataset/preview": {
            "get": {
                "description": "Returns the first n rows (default 10) in column order.",
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Dataset preview",
                "parameters": [
                    {"maximum": 1000, "minimum": 1, "type": "integer", "description": "Number of rows", "name": "n", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dataset.Table"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/dataset/describe": {
            "get": {
                "description": "Count, mean, std, min, quartiles and max for numeric columns; unique, top and freq for text columns; min and max for dates.",
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Descriptive statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dataset.ColumnSummary"}}}
                }
            }
        },
        "/dataset/options/{column}": {
            "get": {
                "description": "Returns the sorted unique values of a column, used to build categorical filters.",
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Filter options",
                "parameters": [
                    {"type": "string", "example": "nationality", "description": "Column name", "name": "column", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/dataset/bounds": {
            "get": {
                "description": "Integer min and max of age, overall, potential and value_eur with their default selections.",
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Range filter bounds",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dataset.Bounds"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/dataset/reload": {
            "post": {
                "description": "Invalidates the dataset store entry for the configured source and reloads it.",
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Reload dataset",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DatasetInfo"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/filter": {
            "post": {
                "description": "Keeps rows whose categorical cells are in the given lists and whose numeric cells fall in the inclusive ranges. All constraints combine with AND.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["filter"],
                "summary": "Filter players",
                "parameters": [
                    {"description": "Filter constraints", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.FilterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.FilterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/predict": {
            "post": {
                "description": "Runs the pre-trained regression model on age, height, overall, potential, value and wage.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict potential",
                "parameters": [
                    {"description": "Model input", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/predict.FeatureRow"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/description": {
            "get": {
                "description": "Returns the HTML description of the dataset, or a JSON notice when the document is not installed.",
                "produces": ["text/html", "application/json"],
                "tags": ["meta"],
                "summary": "Dataset description",
                "responses": {
                    "200": {"description": "HTML document", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "dataset.Bounds": {
            "type": "object",
            "properties": {
                "column": {"type": "string"},
                "min": {"type": "integer"},
                "max": {"type": "integer"},
                "default_min": {"type": "integer"},
                "default_max": {"type": "integer"}
            }
        },
        "dataset.CleanReport": {
            "type": "object",
            "properties": {
                "dropped_columns": {"type": "array", "items": {"type": "string"}},
                "numeric_columns": {"type": "integer"},
                "text_columns": {"type": "integer"},
                "numeric_filled": {"type": "integer"},
                "text_filled": {"type": "integer"},
                "invalid_dates": {"type": "integer"},
                "zero_filled_columns": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dataset.ColumnSummary": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "kind": {"type": "string", "enum": ["numeric", "text", "date"]},
                "count": {"type": "integer"},
                "unique": {"type": "integer"},
                "top": {"type": "string"},
                "freq": {"type": "integer"},
                "mean": {"type": "number"},
                "std": {"type": "number"},
                "min": {},
                "25%": {"type": "number"},
                "50%": {"type": "number"},
                "75%": {"type": "number"},
                "max": {}
            }
        },
        "dataset.Info": {
            "type": "object",
            "properties": {
                "rows": {"type": "integer"},
                "columns": {"type": "integer"},
                "column_names": {"type": "array", "items": {"type": "string"}},
                "categorical": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dataset.Table": {
            "type": "object",
            "properties": {
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"type": "array", "items": {}}}
            }
        },
        "handler.DatasetInfo": {
            "type": "object",
            "properties": {
                "load_id": {"type": "string"},
                "source": {"type": "string"},
                "loaded_at": {"type": "string"},
                "info": {"$ref": "#/definitions/dataset.Info"},
                "clean_report": {"$ref": "#/definitions/dataset.CleanReport"}
            }
        },
        "handler.FilterRequest": {
            "type": "object",
            "properties": {
                "categories": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "ranges": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.RangeRequest"}},
                "limit": {"type": "integer", "minimum": 0, "maximum": 1000}
            }
        },
        "handler.FilterResponse": {
            "type": "object",
            "properties": {
                "load_id": {"type": "string"},
                "total": {"type": "integer"},
                "matches": {"type": "integer"},
                "rows": {"$ref": "#/definitions/dataset.Table"}
            }
        },
        "handler.PredictResponse": {
            "type": "object",
            "properties": {
                "target": {"type": "string"},
                "prediction": {"type": "number"},
                "input": {"$ref": "#/definitions/predict.FeatureRow"}
            }
        },
        "handler.RangeRequest": {
            "type": "object",
            "properties": {
                "min": {"type": "number"},
                "max": {"type": "number"}
            }
        },
        "predict.FeatureRow": {
            "type": "object",
            "properties": {
                "age": {"type": "number", "minimum": 16, "maximum": 45},
                "height_cm": {"type": "number", "minimum": 150, "maximum": 210},
                "overall": {"type": "number", "minimum": 40, "maximum": 99},
                "potential": {"type": "number", "minimum": 40, "maximum": 99},
                "value_eur": {"type": "number", "minimum": 0, "maximum": 150000000},
                "wage_eur": {"type": "number", "minimum": 0, "maximum": 500000}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "FIFA Player Analytics API",
	Description:      "Loads, cleans and filters the FIFA player dataset, serves descriptive statistics and runs the potential prediction model.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
