// Package store 提供事务数据源（core.TransactionSource）的实现。
//
// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	var src core.TransactionSource = store.NewMemorySource(store.SampleBaskets())
//	var src core.TransactionSource = store.NewFileSource("baskets.yaml")
//	var src core.TransactionSource = store.NewRedisSource(client, "baskets")
package store
