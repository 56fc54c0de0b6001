// Package resource 将记录映射到键值存储
//
// 每种资源由一个 Config 描述，一个 Base 负责该资源的全部存储操作：
//
//	<name>:id                 INCR 计数器，分配新 ID
//	<name>:set                集合，保存所有存活的 ID
//	<name>:<id>:<field>       每个字段一个键（模板可配置）
//	<name>:<search>:<value>   二级键，值为所属 ID（可选）
//
// 已知限制：
//   - 只有 GenerateID 是原子的。Save / Destroy 是一串独立的存储调用，
//     中途失败不回滚，可能留下残余键；Verify / Repair 用于事后修复。
//   - 空字符串与未设置等价：空值不会写入存储，已写入的字段无法通过
//     置空来清除。
//   - 记录是否存在由“至少一个字段非空”推断。所有字段都为空的记录
//     与不存在的记录无法区分。
package resource
