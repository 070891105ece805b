package validators

import "go.mongodb.org/mongo-driver/bson"

var SessionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"class_type",
			"instructor",
			"start_time",
			"max_capacity",
			"current_bookings",
			"status",
			"price_cents",
			"location",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"class_type": bson.M{
				"bsonType": "object",
				"required": []string{"id", "name", "duration_minutes", "difficulty_level"},
				"properties": bson.M{
					"name": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
					"difficulty_level": bson.M{
						"bsonType": "string",
						"enum": []string{
							"beginner",
							"intermediate",
							"advanced",
						},
					},
					"duration_minutes": bson.M{
						"bsonType": "int",
						"minimum":  10,
						"maximum":  240,
					},
				},
			},

			"instructor": bson.M{
				"bsonType": "object",
				"required": []string{"id", "name"},
				"properties": bson.M{
					"name": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
				},
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"max_capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  200,
			},

			"current_bookings": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"scheduled",
					"ongoing",
					"completed",
					"cancelled",
				},
			},

			"price_cents": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
