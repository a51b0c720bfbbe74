package delivery

import (
	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/lang"
)

// Static description catalog for the delivery tools, consulted when the LLM
// tool schema is built. The implementation's parameter names are
// authoritative (the schema uses product_id, not the legacy food_id).
func init() {
	env.RegisterDescriptions("delivery", lang.English, map[string]env.ToolDesc{
		"delivery_distance_to_time": {
			Description:    "Estimate the delivery time in minutes from a distance in meters",
			Preconditions:  "The distance from the store to the user's address is known",
			Postconditions: "Returns the delivery time in minutes",
			Args:           map[string]string{"distance": "Distance in meters"},
			Returns:        "Time in minutes",
		},
		"get_delivery_store_info": {
			Description:    "Get store details including id, score, address, coordinates, tags and products",
			Preconditions:  "In the delivery scenario, a store id is known",
			Postconditions: "Returns the store details",
			Args:           map[string]string{"store_id": "Store id"},
			Returns:        "Store details",
		},
		"get_delivery_product_info": {
			Description:    "Get product details including name, id, store, price and tags",
			Preconditions:  "In the delivery scenario, a product id is known",
			Postconditions: "Returns the product details",
			Args:           map[string]string{"product_id": "Product id"},
			Returns:        "Product details",
		},
		"delivery_store_search_recommend": {
			Description:    "Search or recommend stores by keywords extracted from the user's request",
			Preconditions:  "In the delivery scenario, keywords describing stores are known",
			Postconditions: "Returns a store list to guide the user's choice",
			Args:           map[string]string{"keywords": "Keywords describing stores"},
			Returns:        "Structured store list",
		},
		"delivery_product_search_recommend": {
			Description:    "Search or recommend products by keywords extracted from the user's request",
			Preconditions:  "In the delivery scenario, keywords describing products are known",
			Postconditions: "Returns a product list to guide order creation",
			Args:           map[string]string{"keywords": "Keywords describing products"},
			Returns:        "Structured product list",
		},
		"create_delivery_order": {
			Description:    "Create a delivery order from a single store with one or more products",
			Preconditions:  "In the delivery scenario, one store id and product ids are confirmed, dietary restrictions are reflected",
			Postconditions: "Returns the order and asks whether the user wants to pay",
			Args: map[string]string{
				"user_id":       "User id",
				"store_id":      "Store id",
				"product_ids":   "List of product ids",
				"product_cnts":  "Counts matching product_ids",
				"address":       "Delivery target address",
				"dispatch_time": "Time the rider departs from the store, format yyyy-mm-dd HH:MM:SS",
				"attributes":    "Product attribute choices matching product_ids",
				"note":          "Order note, e.g. dietary restrictions (never put timing requests here)",
			},
			Returns: "The created order, or a diagnostic message",
		},
		"pay_delivery_order": {
			Description:    "Pay a delivery order after the user confirms payment",
			Preconditions:  "An unpaid delivery order exists and the user confirmed payment",
			Postconditions: "Returns the payment result",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Payment result",
		},
		"get_delivery_order_status": {
			Description:    "Get the status of a delivery order",
			Preconditions:  "A delivery order id is known",
			Postconditions: "Returns the order status",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Order status",
		},
		"cancel_delivery_order": {
			Description:    "Cancel a delivery order",
			Preconditions:  "A delivery order id is known and the user asked to cancel",
			Postconditions: "Returns the cancellation result",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Cancellation result",
		},
		"modify_delivery_order": {
			Description:    "Modify the note of an existing delivery order",
			Preconditions:  "A delivery order id is known and the user requested a change",
			Postconditions: "Returns the modification result",
			Args: map[string]string{
				"order_id": "Order id",
				"note":     "New order note",
			},
			Returns: "Modification result",
		},
		"search_delivery_orders": {
			Description:    "List the user's delivery orders filtered by status",
			Preconditions:  "The user id is known",
			Postconditions: "Returns the matching delivery orders",
			Args: map[string]string{
				"user_id": "User id",
				"status":  "Order status filter, defaults to unpaid",
			},
			Returns: "Order list",
		},
		"get_delivery_order_detail": {
			Description:    "Get the full detail of one delivery order",
			Preconditions:  "A delivery order id is known",
			Postconditions: "Returns the order detail",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Order detail",
		},
	})

	env.RegisterDescriptions("delivery", lang.Chinese, map[string]env.ToolDesc{
		"delivery_distance_to_time": {
			Description:    "根据距离（米）计算外卖配送时间（分钟）",
			Preconditions:  "根据从商家到用户地址的距离计算外卖配送时间",
			Postconditions: "返回配送时间（分钟）",
			Args:           map[string]string{"distance": "距离（以米为单位）"},
			Returns:        "时间（以分钟为单位）",
		},
		"get_delivery_store_info": {
			Description:    "获取商家信息，包括商家id、评分、地址、经度、纬度、标签、商品列表",
			Preconditions:  "处于外卖场景，需要获取商家的详细信息",
			Postconditions: "返回商家的详细信息",
			Args:           map[string]string{"store_id": "商家id"},
			Returns:        "商家的详细信息",
		},
		"get_delivery_product_info": {
			Description:    "获取商品信息，包括商品名称、商品id、商店名称、商店id、商品价格、商品标签",
			Preconditions:  "处于外卖场景，需要获取商品的详细信息",
			Postconditions: "返回商品的详细信息",
			Args:           map[string]string{"product_id": "商品id"},
			Returns:        "商品的详细信息",
		},
		"delivery_store_search_recommend": {
			Description:    "在外卖场景下，根据用户表达抽取出描述商家的关键词，搜索或推荐多个商家",
			Preconditions:  "处于外卖场景，获取描述商家的关键词",
			Postconditions: "返回商家列表，引导用户选择确定商家",
			Args:           map[string]string{"keywords": "描述商家的关键词"},
			Returns:        "结构化输出的商家信息",
		},
		"delivery_product_search_recommend": {
			Description:    "在外卖场景下，根据用户表达抽取出描述商品的关键词，搜索或推荐多个商品",
			Preconditions:  "处于外卖场景，获取描述商品的关键词",
			Postconditions: "返回商品列表，引导用户选择商品并创建订单",
			Args:           map[string]string{"keywords": "描述商品的关键词"},
			Returns:        "结构化输出的商品信息",
		},
		"create_delivery_order": {
			Description:    "外卖订单创建，仅支持单个商家下单，单个商家可以下单多个商品",
			Preconditions:  "处于外卖场景，确定唯一一个店家id和一个或多个商品id，确定用户的饮食禁忌，并在订单中体现",
			Postconditions: "返回订单信息，询问用户是否支付订单",
			Args: map[string]string{
				"user_id":       "用户id",
				"store_id":      "商店id",
				"product_ids":   "商品id列表",
				"product_cnts":  "商品id对应数量列表",
				"address":       "外卖配送目标地址",
				"dispatch_time": "外卖订单开始配送的时间（即骑手从商家取餐出发的时间），格式为yyyy-mm-dd HH:MM:SS",
				"attributes":    "商品id对应商品规格属性",
				"note":          "订单备注（禁止将用户关于时间等需求直接放在备注中），如饮食禁忌信息说明",
			},
			Returns: "如果创建成功，返回订单信息，否则返回相关提示信息",
		},
		"pay_delivery_order": {
			Description:    "在外卖场景下，上文有订单信息，用户表达确认支付，或者重新支付",
			Preconditions:  "处于外卖场景，订单创建完成并进入支付环节，用户表达确认支付",
			Postconditions: "返回支付结果信息",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "支付结果信息",
		},
		"get_delivery_order_status": {
			Description:    "查询外卖订单状态",
			Preconditions:  "处于外卖场景，已知订单id",
			Postconditions: "返回订单状态",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "订单状态",
		},
		"cancel_delivery_order": {
			Description:    "取消外卖订单",
			Preconditions:  "处于外卖场景，已知订单id，用户表达取消订单",
			Postconditions: "返回取消结果信息",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "取消结果信息",
		},
		"modify_delivery_order": {
			Description:    "修改外卖订单备注",
			Preconditions:  "处于外卖场景，已知订单id，用户表达修改需求",
			Postconditions: "返回修改结果信息",
			Args: map[string]string{
				"order_id": "订单id",
				"note":     "新的订单备注",
			},
			Returns: "修改结果信息",
		},
		"search_delivery_orders": {
			Description:    "按状态查询用户的外卖订单",
			Preconditions:  "处于外卖场景，已知用户id",
			Postconditions: "返回符合条件的外卖订单",
			Args: map[string]string{
				"user_id": "用户id",
				"status":  "订单状态过滤条件，默认unpaid",
			},
			Returns: "订单列表",
		},
		"get_delivery_order_detail": {
			Description:    "查询单个外卖订单的详细信息",
			Preconditions:  "处于外卖场景，已知订单id",
			Postconditions: "返回订单详细信息",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "订单详细信息",
		},
	})
}
