package instore

import (
	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/lang"
)

func init() {
	env.RegisterDescriptions("instore", lang.English, map[string]env.ToolDesc{
		"instore_shop_search_recommend": {
			Description:    "Search or recommend shops by keywords extracted from the user's request",
			Preconditions:  "In the in-store scenario, keywords describing shops are known",
			Postconditions: "Returns a shop list to guide the user's choice",
			Args:           map[string]string{"keywords": "Keywords describing shops"},
			Returns:        "Structured shop list",
		},
		"instore_product_search_recommend": {
			Description:    "Search or recommend in-store packages by keywords",
			Preconditions:  "In the in-store scenario, keywords describing packages are known",
			Postconditions: "Returns a package list to guide order creation",
			Args:           map[string]string{"keywords": "Keywords describing packages"},
			Returns:        "Structured package list",
		},
		"create_instore_product_order": {
			Description:    "Create an order for an in-store package",
			Preconditions:  "A shop id and one of its package ids are confirmed",
			Postconditions: "Returns the order and asks whether the user wants to pay",
			Args: map[string]string{
				"user_id":    "User id",
				"shop_id":    "Shop id",
				"product_id": "Package id",
				"quantity":   "Quantity, defaults to 1",
			},
			Returns: "The created order, or a diagnostic message",
		},
		"pay_instore_order": {
			Description:    "Pay an in-store order after the user confirms payment",
			Preconditions:  "An unpaid in-store order exists and the user confirmed payment",
			Postconditions: "Returns the payment result",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Payment result",
		},
		"instore_cancel_order": {
			Description:    "Cancel an in-store order",
			Preconditions:  "An in-store order id is known and the user asked to cancel",
			Postconditions: "Returns the cancellation result",
			Args:           map[string]string{"order_id": "Order id"},
			Returns:        "Cancellation result",
		},
		"instore_book": {
			Description:    "Book a table at a shop that supports table booking",
			Preconditions:  "A shop id, a booking time and a party size are confirmed",
			Postconditions: "Returns the booking record; paid bookings may require payment",
			Args: map[string]string{
				"user_id":        "User id",
				"shop_id":        "Shop id",
				"time":           "Booking time, format yyyy-mm-dd HH:MM:SS",
				"customer_count": "Party size, defaults to 1",
			},
			Returns: "The created booking, or a diagnostic message",
		},
		"pay_instore_book": {
			Description:    "Pay a table booking after the user confirms payment",
			Preconditions:  "An unpaid booking exists and the user confirmed payment",
			Postconditions: "Returns the payment result",
			Args:           map[string]string{"book_id": "Booking id"},
			Returns:        "Payment result",
		},
		"instore_cancel_book": {
			Description:    "Cancel a table booking",
			Preconditions:  "A booking id is known and the user asked to cancel",
			Postconditions: "Returns the cancellation result",
			Args:           map[string]string{"book_id": "Booking id"},
			Returns:        "Cancellation result",
		},
		"instore_reservation": {
			Description:    "Create a service reservation at a shop",
			Preconditions:  "A shop id, a reservation time and a party size are confirmed",
			Postconditions: "Returns the reservation record",
			Args: map[string]string{
				"user_id":        "User id",
				"shop_id":        "Shop id",
				"time":           "Reservation time, format yyyy-mm-dd HH:MM:SS",
				"customer_count": "Party size, defaults to 1",
			},
			Returns: "The created reservation, or a diagnostic message",
		},
		"instore_modify_reservation": {
			Description:    "Set a reservation's new time and party size; the time is always required",
			Preconditions:  "A reservation id is known and the reservation is not consumed or cancelled",
			Postconditions: "Returns the modified reservation",
			Args: map[string]string{
				"reservation_id": "Reservation id",
				"time":           "New reservation time, format yyyy-mm-dd HH:MM:SS",
				"customer_count": "New party size; when omitted the party size is set to 0",
			},
			Returns: "Modification result",
		},
		"instore_cancel_reservation": {
			Description:    "Cancel a reservation",
			Preconditions:  "A reservation id is known and the user asked to cancel",
			Postconditions: "Returns the cancellation result",
			Args:           map[string]string{"reservation_id": "Reservation id"},
			Returns:        "Cancellation result",
		},
		"get_instore_orders": {
			Description:    "List the user's in-store orders",
			Preconditions:  "The user id is known",
			Postconditions: "Returns the user's in-store orders",
			Args:           map[string]string{"user_id": "User id"},
			Returns:        "Order list",
		},
		"get_instore_reservations": {
			Description:    "List the user's reservations",
			Preconditions:  "The user id is known",
			Postconditions: "Returns the user's reservations",
			Args:           map[string]string{"user_id": "User id"},
			Returns:        "Reservation list",
		},
		"get_instore_books": {
			Description:    "List the user's table bookings",
			Preconditions:  "The user id is known",
			Postconditions: "Returns the user's bookings",
			Args:           map[string]string{"user_id": "User id"},
			Returns:        "Booking list",
		},
		"search_instore_book": {
			Description:    "Look up one booking, or list all of the user's bookings",
			Preconditions:  "The user id is known; a booking id narrows the search",
			Postconditions: "Returns the matching booking(s)",
			Args: map[string]string{
				"user_id": "User id",
				"book_id": "Booking id, optional",
			},
			Returns: "Booking detail or list",
		},
		"search_instore_reservation": {
			Description:    "Look up one reservation, or list all of the user's reservations",
			Preconditions:  "The user id is known; a reservation id narrows the search",
			Postconditions: "Returns the matching reservation(s)",
			Args: map[string]string{
				"user_id":        "User id",
				"reservation_id": "Reservation id, optional",
			},
			Returns: "Reservation detail or list",
		},
	})

	env.RegisterDescriptions("instore", lang.Chinese, map[string]env.ToolDesc{
		"instore_shop_search_recommend": {
			Description:    "在到店场景下，根据用户表达抽取出描述店铺的关键词，搜索或推荐多个店铺",
			Preconditions:  "处于到店场景，获取描述店铺的关键词",
			Postconditions: "返回店铺列表，引导用户选择确定店铺",
			Args:           map[string]string{"keywords": "描述店铺的关键词"},
			Returns:        "结构化输出的店铺信息",
		},
		"instore_product_search_recommend": {
			Description:    "在到店场景下，根据关键词搜索或推荐多个套餐",
			Preconditions:  "处于到店场景，获取描述套餐的关键词",
			Postconditions: "返回套餐列表，引导用户选择并创建订单",
			Args:           map[string]string{"keywords": "描述套餐的关键词"},
			Returns:        "结构化输出的套餐信息",
		},
		"create_instore_product_order": {
			Description:    "创建到店套餐订单",
			Preconditions:  "处于到店场景，确定店铺id和其中一个套餐id",
			Postconditions: "返回订单信息，询问用户是否支付订单",
			Args: map[string]string{
				"user_id":    "用户id",
				"shop_id":    "店铺id",
				"product_id": "套餐id",
				"quantity":   "数量，默认1",
			},
			Returns: "如果创建成功，返回订单信息，否则返回相关提示信息",
		},
		"pay_instore_order": {
			Description:    "在到店场景下，用户确认支付订单",
			Preconditions:  "存在未支付的到店订单，用户表达确认支付",
			Postconditions: "返回支付结果信息",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "支付结果信息",
		},
		"instore_cancel_order": {
			Description:    "取消到店订单",
			Preconditions:  "处于到店场景，已知订单id，用户表达取消",
			Postconditions: "返回取消结果信息",
			Args:           map[string]string{"order_id": "订单id"},
			Returns:        "取消结果信息",
		},
		"instore_book": {
			Description:    "在支持订座的店铺预订桌位",
			Preconditions:  "确定店铺id、订座时间和人数",
			Postconditions: "返回订座记录，如需付费则进入支付环节",
			Args: map[string]string{
				"user_id":        "用户id",
				"shop_id":        "店铺id",
				"time":           "订座时间，格式yyyy-mm-dd HH:MM:SS",
				"customer_count": "人数，默认1",
			},
			Returns: "如果创建成功，返回订座信息，否则返回相关提示信息",
		},
		"pay_instore_book": {
			Description:    "支付桌位订座费用",
			Preconditions:  "存在未支付的订座记录，用户表达确认支付",
			Postconditions: "返回支付结果信息",
			Args:           map[string]string{"book_id": "订座id"},
			Returns:        "支付结果信息",
		},
		"instore_cancel_book": {
			Description:    "取消桌位订座",
			Preconditions:  "已知订座id，用户表达取消",
			Postconditions: "返回取消结果信息",
			Args:           map[string]string{"book_id": "订座id"},
			Returns:        "取消结果信息",
		},
		"instore_reservation": {
			Description:    "在店铺创建服务预约",
			Preconditions:  "确定店铺id、预约时间和人数",
			Postconditions: "返回预约记录",
			Args: map[string]string{
				"user_id":        "用户id",
				"shop_id":        "店铺id",
				"time":           "预约时间，格式yyyy-mm-dd HH:MM:SS",
				"customer_count": "人数，默认1",
			},
			Returns: "如果创建成功，返回预约信息，否则返回相关提示信息",
		},
		"instore_modify_reservation": {
			Description:    "修改预约的时间和人数，时间必填",
			Preconditions:  "已知预约id，且预约未消费、未取消",
			Postconditions: "返回修改后的预约信息",
			Args: map[string]string{
				"reservation_id": "预约id",
				"time":           "新的预约时间，格式yyyy-mm-dd HH:MM:SS",
				"customer_count": "新的人数，未传时人数设为0",
			},
			Returns: "修改结果信息",
		},
		"instore_cancel_reservation": {
			Description:    "取消预约",
			Preconditions:  "已知预约id，用户表达取消",
			Postconditions: "返回取消结果信息",
			Args:           map[string]string{"reservation_id": "预约id"},
			Returns:        "取消结果信息",
		},
		"get_instore_orders": {
			Description:    "查询用户的到店订单",
			Preconditions:  "已知用户id",
			Postconditions: "返回用户的到店订单",
			Args:           map[string]string{"user_id": "用户id"},
			Returns:        "订单列表",
		},
		"get_instore_reservations": {
			Description:    "查询用户的预约记录",
			Preconditions:  "已知用户id",
			Postconditions: "返回用户的预约记录",
			Args:           map[string]string{"user_id": "用户id"},
			Returns:        "预约列表",
		},
		"get_instore_books": {
			Description:    "查询用户的订座记录",
			Preconditions:  "已知用户id",
			Postconditions: "返回用户的订座记录",
			Args:           map[string]string{"user_id": "用户id"},
			Returns:        "订座列表",
		},
		"search_instore_book": {
			Description:    "查询单个订座或用户全部订座",
			Preconditions:  "已知用户id，可选订座id缩小范围",
			Postconditions: "返回匹配的订座记录",
			Args: map[string]string{
				"user_id": "用户id",
				"book_id": "订座id，可选",
			},
			Returns: "订座详情或列表",
		},
		"search_instore_reservation": {
			Description:    "查询单个预约或用户全部预约",
			Preconditions:  "已知用户id，可选预约id缩小范围",
			Postconditions: "返回匹配的预约记录",
			Args: map[string]string{
				"user_id":        "用户id",
				"reservation_id": "预约id，可选",
			},
			Returns: "预约详情或列表",
		},
	})
}
