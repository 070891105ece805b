package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"session_id",
			"client_id",
			"client_name",
			"session",
			"status",
			"active",
			"booked_at",
			"reference",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"session_id": bson.M{
				"bsonType": "string",
			},

			"client_id": bson.M{
				"bsonType": "string",
			},

			"client_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"session": bson.M{
				"bsonType": "object",
				"required": []string{"class_name", "instructor", "start_time"},
				"properties": bson.M{
					"start_time": bson.M{
						"bsonType": "date",
					},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"waitlisted",
					"cancelled",
					"completed",
					"no_show",
				},
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"booked_at": bson.M{
				"bsonType": "date",
			},

			"reference": bson.M{
				"bsonType": "string",
				"pattern":  "^FB[0-9]{8}[A-Z0-9]{6}$",
			},

			"special_requests": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"feedback_rating": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  5,
			},
		},
	},
}
