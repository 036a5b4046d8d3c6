// Package docs registra la especificación OpenAPI servida en /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/health": {
			"get": {
				"produces": [
					"text/plain"
				],
				"tags": [
					"health"
				],
				"summary": "Liveness",
				"responses": {
					"200": {
						"description": "ok",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/me/profile": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profiles"
				],
				"summary": "Perfil del usuario autenticado",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/profiles.Profile"
						}
					},
					"401": {
						"description": "unauthorized (X-Force-Logout)",
						"schema": {
							"type": "string"
						}
					},
					"404": {
						"description": "storage no encontrado",
						"schema": {
							"type": "string"
						}
					},
					"502": {
						"description": "pod unreachable",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/me/patient": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"patients"
				],
				"summary": "Ficha de paciente",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/patients.patientResponse"
						}
					},
					"401": {
						"description": "unauthorized",
						"schema": {
							"type": "string"
						}
					},
					"403": {
						"description": "forbidden",
						"schema": {
							"type": "string"
						}
					},
					"404": {
						"description": "sin ficha",
						"schema": {
							"type": "string"
						}
					}
				}
			},
			"put": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"patients"
				],
				"summary": "Guardar ficha de paciente",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"description": "Ficha",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/patients.savePatientRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/patients.patientResponse"
						}
					},
					"400": {
						"description": "validación",
						"schema": {
							"type": "string"
						}
					},
					"409": {
						"description": "concurrent modification",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/measurements": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"measurements"
				],
				"summary": "Mediciones de un día",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"type": "string",
						"description": "YYYY-MM-DD, default hoy",
						"name": "date",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/measurements.entryResponse"
							}
						}
					},
					"400": {
						"description": "date inválida",
						"schema": {
							"type": "string"
						}
					},
					"401": {
						"description": "unauthorized",
						"schema": {
							"type": "string"
						}
					}
				}
			},
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"measurements"
				],
				"summary": "Registrar medición",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"description": "Medición",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/measurements.insertRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/measurements.entryResponse"
						}
					},
					"400": {
						"description": "invalid json / validación",
						"schema": {
							"type": "string"
						}
					},
					"401": {
						"description": "unauthorized",
						"schema": {
							"type": "string"
						}
					},
					"409": {
						"description": "concurrent modification",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/measurements/count": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"measurements"
				],
				"summary": "Total de mediciones",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/measurements.countResponse"
						}
					},
					"401": {
						"description": "unauthorized (X-Force-Logout)",
						"schema": {
							"type": "string"
						}
					},
					"502": {
						"description": "pod unreachable",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/measurements/{date}/{recordID}": {
			"delete": {
				"tags": [
					"measurements"
				],
				"summary": "Borrar medición",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"type": "string",
						"description": "YYYY-MM-DD",
						"name": "date",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "ID del registro",
						"name": "recordID",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "measurement not found",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/doctor/measurements": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"measurements"
				],
				"summary": "Mediciones de un paciente (doctor)",
				"description": "Solo para pods cuyo host está en IDHEALTH_DOCTOR_POD_HOSTS y cuya ficha de paciente lista al doctor en ` + "`" + `doctors` + "`" + `.",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Raíz de storage del paciente",
						"name": "storage",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "YYYY-MM-DD, default hoy",
						"name": "date",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/measurements.entryResponse"
							}
						}
					},
					"400": {
						"description": "storage requerido",
						"schema": {
							"type": "string"
						}
					},
					"403": {
						"description": "forbidden",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/predictions": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"predictions"
				],
				"summary": "Predicciones de un día",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"type": "string",
						"description": "YYYY-MM-DD, default hoy",
						"name": "date",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/predictions.entryResponse"
							}
						}
					},
					"400": {
						"description": "date inválida",
						"schema": {
							"type": "string"
						}
					}
				}
			},
			"post": {
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"predictions"
				],
				"summary": "Predecir dosis de insulina",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"description": "Franja",
						"name": "payload",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/predictions.predictRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "basal, nada guardado",
						"schema": {
							"$ref": "#/definitions/predictions.predictResponse"
						}
					},
					"201": {
						"description": "dosis calculada y guardada",
						"schema": {
							"$ref": "#/definitions/predictions.predictResponse"
						}
					},
					"400": {
						"description": "time_slot inválida",
						"schema": {
							"type": "string"
						}
					},
					"404": {
						"description": "no hay medición hoy en la franja",
						"schema": {
							"type": "string"
						}
					},
					"502": {
						"description": "pod unreachable",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/predictions/chart": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"predictions"
				],
				"summary": "Puntos del gráfico de insulina",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					},
					{
						"type": "string",
						"description": "YYYY-MM-DD, default hoy",
						"name": "date",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/predictions.ChartPoint"
							}
						}
					}
				}
			}
		},
		"/training": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"training"
				],
				"summary": "Entrenar el modelo",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/training.triggerResponse"
						}
					},
					"401": {
						"description": "unauthorized",
						"schema": {
							"type": "string"
						}
					},
					"422": {
						"description": "valores insuficientes",
						"schema": {
							"type": "string"
						}
					},
					"502": {
						"description": "servicio de entrenamiento falló",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/training/events": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"training"
				],
				"summary": "Historial de entrenamientos",
				"parameters": [
					{
						"type": "string",
						"description": "Solo en modo dev, WebID del usuario",
						"name": "X-Debug-User-ID",
						"in": "header"
					},
					{
						"type": "string",
						"description": "Bearer token Solid-OIDC",
						"name": "Authorization",
						"in": "header"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/training.eventsResponse"
						}
					},
					"401": {
						"description": "unauthorized",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"profiles.Profile": {
			"type": "object",
			"properties": {
				"web_id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"storage_location": {
					"type": "string"
				},
				"role": {
					"type": "string"
				}
			}
		},
		"patients.savePatientRequest": {
			"type": "object",
			"properties": {
				"given_name": {
					"type": "string"
				},
				"family_name": {
					"type": "string"
				},
				"birth_date": {
					"type": "string"
				},
				"gender": {
					"type": "string"
				},
				"diabetes_type": {
					"type": "string"
				},
				"doctors": {
					"description": "WebID de doctores autorizados",
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"extra": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				}
			}
		},
		"patients.patientResponse": {
			"type": "object",
			"properties": {
				"web_id": {
					"type": "string"
				},
				"given_name": {
					"type": "string"
				},
				"family_name": {
					"type": "string"
				},
				"birth_date": {
					"type": "string"
				},
				"gender": {
					"type": "string"
				},
				"diabetes_type": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"doctors": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"extra": {
					"type": "object",
					"additionalProperties": {
						"type": "string"
					}
				}
			}
		},
		"measurements.insertRequest": {
			"type": "object",
			"properties": {
				"date": {
					"type": "string"
				},
				"value": {
					"type": "number"
				},
				"time_slot": {
					"type": "string"
				}
			}
		},
		"measurements.entryResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"date": {
					"type": "string"
				},
				"value": {
					"type": "number"
				},
				"time_slot": {
					"type": "string"
				},
				"inserted_at": {
					"type": "string"
				}
			}
		},
		"measurements.countResponse": {
			"type": "object",
			"properties": {
				"total": {
					"type": "integer"
				}
			}
		},
		"predictions.predictRequest": {
			"type": "object",
			"properties": {
				"time_slot": {
					"type": "string"
				}
			}
		},
		"predictions.entryResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"date": {
					"type": "string"
				},
				"predicted_insulin": {
					"type": "number"
				},
				"glucose_value": {
					"type": "number"
				},
				"time_slot": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				}
			}
		},
		"predictions.predictResponse": {
			"type": "object",
			"properties": {
				"date": {
					"type": "string"
				},
				"time_slot": {
					"type": "string"
				},
				"glucose_value": {
					"type": "number"
				},
				"advice": {
					"type": "string"
				},
				"calculated_dose": {
					"type": "number"
				},
				"model_prediction": {
					"type": "number"
				},
				"saved": {
					"$ref": "#/definitions/predictions.entryResponse"
				}
			}
		},
		"predictions.ChartPoint": {
			"type": "object",
			"properties": {
				"label": {
					"type": "string"
				},
				"insulin": {
					"type": "number"
				},
				"glucose_value": {
					"type": "number"
				},
				"time_slot": {
					"type": "string"
				}
			}
		},
		"training.triggerResponse": {
			"type": "object",
			"properties": {
				"values": {
					"type": "array",
					"items": {
						"type": "number"
					}
				},
				"message": {
					"type": "string"
				},
				"recorded": {
					"type": "boolean"
				},
				"event": {
					"type": "string"
				}
			}
		},
		"training.eventsResponse": {
			"type": "object",
			"properties": {
				"events": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "IDHealth API",
	Description:      "Acceso a los datos de salud guardados en el pod Solid del usuario.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
