package mongostore

import (
	"context"
	"errors"

	"marketplace/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// newestFirst 展示站列表统一按发布时间倒序（对应 status + created_at 索引）
var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

// wrapError 驱动错误转领域错误，重复 _id 视为 ErrDuplicate
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return storage.ErrDuplicate
	}
	return err
}

// findByID 按 _id 读取条目，不存在返回 (nil, nil)
func findByID[T any](ctx context.Context, col *mongo.Collection, id string) (*T, error) {
	var doc T
	if err := col.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	return &doc, nil
}

// findNewest 按过滤条件读取，最新的在前；没有结果时返回空切片而非 nil
func findNewest[T any](ctx context.Context, col *mongo.Collection, filter bson.D) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	docs := []*T{}
	for cursor.Next(ctx) {
		doc := new(T)
		if err := cursor.Decode(doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, cursor.Err()
}

// setFields 对单个条目执行 $set，未匹配时返回 ErrNotFound
func setFields(ctx context.Context, col *mongo.Collection, id string, fields bson.D) error {
	res, err := col.UpdateOne(ctx, byID(id), bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// removeByID 删除单个条目，未命中时返回 ErrNotFound
func removeByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, byID(id))
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
